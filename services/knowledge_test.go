package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumeai/models"
)

func testKB() *models.KnowledgeBase {
	return &models.KnowledgeBase{
		Profile: models.Profile{
			Name:    "Alex Morgan",
			Summary: "Backend engineer focused on data infrastructure.",
		},
		Highlights: []string{"Led a platform migration", "Conference speaker"},
		QA: []models.QAPair{
			{Q: "What languages do you use?", A: "Go, Python, JavaScript."},
			{Q: "Where did you study?", A: "State University."},
			{Q: "Do you have management experience?", A: "Yes, I led a team of four."},
			{Q: "What cloud platforms do you know?", A: "AWS and GCP."},
			{Q: "What are your hobbies?", A: "Climbing and chess."},
			{Q: "How can I contact you?", A: "Use the contact form."},
		},
	}
}

func TestScoreEntries_ReturnsAtMostFive(t *testing.T) {
	kb := testKB()
	scored := ScoreEntries("what do you know about everything", kb.QA)

	if len(scored) > TopEntries {
		t.Fatalf("expected at most %d entries, got %d", TopEntries, len(scored))
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %d after %d", i, scored[i].Score, scored[i-1].Score)
		}
	}
}

func TestScoreEntries_EmptyQueryKeepsOriginalOrder(t *testing.T) {
	kb := testKB()
	scored := ScoreEntries("", kb.QA)

	if len(scored) != TopEntries {
		t.Fatalf("expected %d entries, got %d", TopEntries, len(scored))
	}
	for i, e := range scored {
		if e.Score != 0 {
			t.Errorf("entry %d: expected score 0, got %d", i, e.Score)
		}
		if e.Q != kb.QA[i].Q {
			t.Errorf("entry %d: order changed, got %q want %q", i, e.Q, kb.QA[i].Q)
		}
	}
}

func TestScoreEntries_TiesKeepKnowledgeBaseOrder(t *testing.T) {
	entries := []models.QAPair{
		{Q: "alpha question", A: "first"},
		{Q: "alpha question", A: "second"},
		{Q: "alpha question", A: "third"},
	}

	scored := ScoreEntries("alpha", entries)
	want := []string{"first", "second", "third"}
	for i, a := range want {
		if scored[i].A != a {
			t.Errorf("tie order broken at %d: got %q want %q", i, scored[i].A, a)
		}
	}
}

func TestScoreEntries_RanksLanguagesPairFirst(t *testing.T) {
	entries := []models.QAPair{
		{Q: "Where did you study?", A: "State University."},
		{Q: "What languages do you use?", A: "Go, Python, JavaScript."},
	}

	scored := ScoreEntries("What programming languages do you know?", entries)

	if scored[0].Q != "What languages do you use?" {
		t.Fatalf("expected languages pair first, got %q", scored[0].Q)
	}
	if scored[0].Score == 0 {
		t.Error("expected non-zero overlap for the languages pair")
	}
}

func TestScoreEntries_SubstringContainment(t *testing.T) {
	entries := []models.QAPair{
		{Q: "Tell me about databases", A: "Postgres mostly."},
	}

	// "base" is a substring of "databases"; word-boundary matching would miss it.
	scored := ScoreEntries("base", entries)
	if scored[0].Score != 1 {
		t.Errorf("expected substring match to score 1, got %d", scored[0].Score)
	}
}

func TestBuildContext_ContainsProfileAndPairsVerbatim(t *testing.T) {
	kb := testKB()
	top := ScoreEntries("What programming languages do you know?", kb.QA)
	block := BuildContext(kb, top, 0)

	if !strings.Contains(block, kb.Profile.Name) {
		t.Error("context missing profile name")
	}
	if !strings.Contains(block, kb.Profile.Summary) {
		t.Error("context missing profile summary")
	}
	if !strings.Contains(block, "Led a platform migration | Conference speaker") {
		t.Error("context missing pipe-joined highlights")
	}
	if !strings.Contains(block, "Q:What languages do you use? A:Go, Python, JavaScript.") {
		t.Errorf("context missing verbatim QA pair:\n%s", block)
	}
}

func TestBuildContext_NilKnowledgeBase(t *testing.T) {
	if got := BuildContext(nil, nil, 0); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestBuildContext_BudgetDropsLowestScoredFirst(t *testing.T) {
	kb := testKB()
	long := strings.Repeat("x", 400)
	top := []models.ScoredEntry{
		{QAPair: models.QAPair{Q: "keep me", A: long}, Score: 3},
		{QAPair: models.QAPair{Q: "drop me", A: long}, Score: 1},
	}

	full := BuildContext(kb, top, 0)
	block := BuildContext(kb, top, len(full)-1)

	if !strings.Contains(block, "keep me") {
		t.Error("highest-scored entry was dropped")
	}
	if strings.Contains(block, "drop me") {
		t.Error("lowest-scored entry survived the budget")
	}
}

func TestFileLoader_LoadAndParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	data := `{"profile":{"name":"Alex","summary":"Engineer"},"highlights":["one"],"qa":[{"q":"a?","a":"b"}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	kb, err := (&FileLoader{Path: path}).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if kb.Profile.Name != "Alex" || len(kb.QA) != 1 {
		t.Errorf("unexpected knowledge base: %+v", kb)
	}
}

func TestHTTPLoader_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assets/resume_qa.json" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"profile":{"name":"Alex","summary":"Engineer"},"highlights":[],"qa":[]}`)
	}))
	defer server.Close()

	kb, err := (&HTTPLoader{BaseURL: server.URL}).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if kb.Profile.Name != "Alex" {
		t.Errorf("unexpected profile: %+v", kb.Profile)
	}
}

func TestContextFor_LoadFailureDegradesToEmpty(t *testing.T) {
	svc := NewKnowledgeService(&FileLoader{Path: filepath.Join(t.TempDir(), "missing.json")}, 0)

	if got := svc.ContextFor(context.Background(), "anything"); got != "" {
		t.Errorf("expected empty context on load failure, got %q", got)
	}
}

func TestContextFor_ParseFailureDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewKnowledgeService(&FileLoader{Path: path}, 0)
	if got := svc.ContextFor(context.Background(), "anything"); got != "" {
		t.Errorf("expected empty context on parse failure, got %q", got)
	}
}
