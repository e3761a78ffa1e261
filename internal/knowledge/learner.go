package knowledge

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"OptionSentinel/internal/storage"
)

// categoryKeywords maps a knowledge category to the phrases that assign a
// paragraph to it.
var categoryKeywords = map[string][]string{
	"patterns":   {"engulfing", "doji", "candlestick", "pattern", "hammer", "pin bar"},
	"levels":     {"support", "resistance", "level", "breakout", "bounce"},
	"indicators": {"rsi", "macd", "atr", "moving average", "oscillator", "divergence"},
	"psychology": {"discipline", "emotion", "fear", "greed", "patience"},
	"risk":       {"risk", "stake", "drawdown", "money management", "position size"},
}

// Stats summarizes the learner's accumulated knowledge.
type Stats struct {
	TotalConcepts int            `json:"total_concepts"`
	Categories    map[string]int `json:"categories"`
}

// Learner extracts trading concepts from text documents and persists them as
// categorized knowledge entries.
type Learner struct {
	store storage.Store

	mu       sync.Mutex
	concepts []storage.KnowledgeEntry
}

// NewLearner creates a learner, preloading any knowledge already persisted.
func NewLearner(store storage.Store) *Learner {
	if store == nil {
		store = storage.NewNoopStore()
	}
	l := &Learner{store: store}
	existing, err := store.AllKnowledge()
	if err != nil {
		log.Printf("[WARN] failed to load existing knowledge: %v", err)
		return l
	}
	l.concepts = existing
	if len(existing) > 0 {
		log.Printf("[INFO] loaded %d knowledge concepts", len(existing))
	}
	return l
}

// Learn reads one text document, extracts categorized concepts, persists them,
// and returns how many concepts the document contributed.
func (l *Learner) Learn(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read document: %w", err)
	}

	source := filepath.Base(path)
	entries := extract(source, string(data))

	l.mu.Lock()
	defer l.mu.Unlock()

	saved := 0
	for _, entry := range entries {
		if err := l.store.SaveKnowledge(entry); err != nil {
			log.Printf("[WARN] save knowledge from %s: %v", source, err)
			continue
		}
		l.concepts = append(l.concepts, entry)
		saved++
	}

	log.Printf("[INFO] learned %d concepts from %s", saved, source)
	return saved, nil
}

// extract splits the document into paragraphs and assigns each to the
// categories whose keywords it mentions.
func extract(source, text string) []storage.KnowledgeEntry {
	var entries []storage.KnowledgeEntry
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if len(para) < 40 {
			continue
		}
		lower := strings.ToLower(para)
		for category, keywords := range categoryKeywords {
			hits := 0
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					hits++
				}
			}
			if hits == 0 {
				continue
			}
			entries = append(entries, storage.KnowledgeEntry{
				Source:    source,
				Category:  category,
				Content:   para,
				Summary:   summarize(para),
				Relevance: float64(hits) / float64(len(keywords)),
			})
		}
	}
	return entries
}

// summarize keeps the first sentence, capped at 200 characters.
func summarize(para string) string {
	if i := strings.IndexAny(para, ".!?"); i > 0 && i < len(para)-1 {
		para = para[:i+1]
	}
	if len(para) > 200 {
		para = para[:200]
	}
	return strings.TrimSpace(para)
}

// Stats returns counts of stored concepts per category.
func (l *Learner) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{
		TotalConcepts: len(l.concepts),
		Categories:    make(map[string]int),
	}
	for _, c := range l.concepts {
		stats.Categories[c.Category]++
	}
	return stats
}
