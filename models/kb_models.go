package models

// Profile identifies whose resume the assistant is answering for.
type Profile struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// QAPair is one curated question/answer entry in the knowledge base.
type QAPair struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// KnowledgeBase is the static resume document that grounds chat answers.
// It is read-only and loaded fresh for every query.
type KnowledgeBase struct {
	Profile    Profile  `json:"profile"`
	Highlights []string `json:"highlights"`
	QA         []QAPair `json:"qa"`
}

// ScoredEntry is a QA pair with its relevance score for one query.
type ScoredEntry struct {
	QAPair
	Score int `json:"score"`
}
