package storage

import "OptionSentinel/internal/model"

// KnowledgeEntry is one learned trading concept.
type KnowledgeEntry struct {
	Source    string
	Category  string
	Content   string
	Summary   string
	Relevance float64
}

// Store persists trades, learned knowledge, and model state. It is
// constructed once at composition time and passed into the components that
// need it.
type Store interface {
	SaveTrade(rec model.TradeRecord) error
	SaveKnowledge(entry KnowledgeEntry) error
	AllKnowledge() ([]KnowledgeEntry, error)
	// SaveModel upserts a versioned model blob under the given name.
	SaveModel(name string, blob []byte, version int) error
	// LoadModel returns the stored blob and version, or (nil, 0, nil) when
	// no model has been saved under the name.
	LoadModel(name string) ([]byte, int, error)
	Close() error
}

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveTrade(_ model.TradeRecord) error          { return nil }
func (n *NoopStore) SaveKnowledge(_ KnowledgeEntry) error         { return nil }
func (n *NoopStore) AllKnowledge() ([]KnowledgeEntry, error)      { return nil, nil }
func (n *NoopStore) SaveModel(_ string, _ []byte, _ int) error    { return nil }
func (n *NoopStore) LoadModel(_ string) ([]byte, int, error)      { return nil, 0, nil }
func (n *NoopStore) Close() error                                 { return nil }
