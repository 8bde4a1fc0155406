package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"

	"resumeai/models"

	"github.com/rs/zerolog/log"
)

// TopEntries is the number of QA pairs forwarded as grounding context.
const TopEntries = 5

// KBLoader loads the knowledge base document. Implementations read it fresh
// on every call; staleness between an edit and the next query is acceptable.
type KBLoader interface {
	Load(ctx context.Context) (*models.KnowledgeBase, error)
}

// FileLoader reads the knowledge base from local disk (server side).
type FileLoader struct {
	Path string
}

// Load reads and parses the knowledge base file.
func (l *FileLoader) Load(ctx context.Context) (*models.KnowledgeBase, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}

	var kb models.KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	return &kb, nil
}

// HTTPLoader fetches the knowledge base from a running relay, the way the
// browser widget does.
type HTTPLoader struct {
	BaseURL string
	Client  *http.Client
}

// Load fetches and parses the published knowledge base document.
func (l *HTTPLoader) Load(ctx context.Context) (*models.KnowledgeBase, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.BaseURL+"/assets/resume_qa.json", nil)
	if err != nil {
		return nil, fmt.Errorf("build knowledge base request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch knowledge base: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch knowledge base: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base response: %w", err)
	}

	var kb models.KnowledgeBase
	if err := json.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	return &kb, nil
}

var termSplit = regexp.MustCompile(`\W+`)

// queryTerms tokenizes a query into a deduplicated set of lower-case terms.
func queryTerms(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, tok := range termSplit.Split(strings.ToLower(query), -1) {
		if tok != "" {
			terms[tok] = struct{}{}
		}
	}
	return terms
}

// ScoreEntries ranks QA pairs against a free-text query. The score is the
// count of distinct query terms found anywhere in the lower-cased question
// plus answer; substring containment is deliberate so short queries still
// hit. The sort is stable: ties keep knowledge-base order. At most TopEntries
// entries are returned.
func ScoreEntries(query string, entries []models.QAPair) []models.ScoredEntry {
	terms := queryTerms(query)

	scored := make([]models.ScoredEntry, 0, len(entries))
	for _, e := range entries {
		haystack := strings.ToLower(e.Q + " " + e.A)
		score := 0
		for term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		scored = append(scored, models.ScoredEntry{QAPair: e, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > TopEntries {
		scored = scored[:TopEntries]
	}
	return scored
}

// BuildContext formats the grounding block injected ahead of the visitor's
// question. The character budget keeps long answers from blowing the upstream
// token limit; the lowest-scored entries are dropped first until the block
// fits. A budget of zero or less means unbounded.
func BuildContext(kb *models.KnowledgeBase, top []models.ScoredEntry, budget int) string {
	if kb == nil {
		return ""
	}

	for {
		block := renderContext(kb, top)
		if budget <= 0 || len(block) <= budget || len(top) == 0 {
			return block
		}
		top = top[:len(top)-1]
	}
}

func renderContext(kb *models.KnowledgeBase, top []models.ScoredEntry) string {
	pairs := make([]string, 0, len(top))
	for _, e := range top {
		pairs = append(pairs, fmt.Sprintf("Q:%s A:%s", e.Q, e.A))
	}

	var sb strings.Builder
	sb.WriteString("Name: " + kb.Profile.Name + "\n")
	sb.WriteString("Summary: " + kb.Profile.Summary + "\n")
	sb.WriteString("Highlights: " + strings.Join(kb.Highlights, " | ") + "\n")
	sb.WriteString("Relevant QA: " + strings.Join(pairs, " | "))
	return sb.String()
}

// KnowledgeService produces grounding context for chat exchanges.
type KnowledgeService struct {
	loader KBLoader
	budget int
}

// NewKnowledgeService creates a knowledge service over the given loader.
func NewKnowledgeService(loader KBLoader, budget int) *KnowledgeService {
	return &KnowledgeService{loader: loader, budget: budget}
}

// ContextFor loads the knowledge base and assembles grounding for a query.
// Load or parse failures degrade to an empty string: the assistant still
// answers, it just has less to say.
func (k *KnowledgeService) ContextFor(ctx context.Context, query string) string {
	kb, err := k.loader.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("knowledge base unavailable, answering without grounding")
		return ""
	}

	top := ScoreEntries(query, kb.QA)
	return BuildContext(kb, top, k.budget)
}
