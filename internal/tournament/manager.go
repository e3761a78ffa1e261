package tournament

import (
	"fmt"
	"log"
	"sync"

	"OptionSentinel/internal/broker"
	"OptionSentinel/internal/model"
)

// Manager enrolls the account into venue tournaments, tracking which ones it
// has already joined so repeated sweeps stay idempotent.
type Manager struct {
	gateway broker.Gateway

	mu     sync.Mutex
	joined map[string]bool
}

// NewManager creates a tournament manager for the given gateway.
func NewManager(gw broker.Gateway) *Manager {
	return &Manager{
		gateway: gw,
		joined:  make(map[string]bool),
	}
}

// FreeTournaments lists the active tournaments with no entry fee.
func (m *Manager) FreeTournaments() ([]model.Tournament, error) {
	all, err := m.gateway.Tournaments()
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	var free []model.Tournament
	for _, t := range all {
		if t.EntryFee == 0 && t.Status == "active" {
			free = append(free, t)
		}
	}
	return free, nil
}

// JoinByID enrolls into one tournament; already-joined ids are skipped.
func (m *Manager) JoinByID(id string) error {
	m.mu.Lock()
	if m.joined[id] {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if err := m.gateway.JoinTournament(id); err != nil {
		return fmt.Errorf("join tournament %s: %w", id, err)
	}

	m.mu.Lock()
	m.joined[id] = true
	m.mu.Unlock()
	return nil
}

// EnrollFree sweeps the venue and joins every free active tournament not yet
// joined, returning how many enrollments happened in this sweep.
func (m *Manager) EnrollFree() (int, error) {
	free, err := m.FreeTournaments()
	if err != nil {
		return 0, err
	}

	joined := 0
	for _, t := range free {
		m.mu.Lock()
		seen := m.joined[t.ID]
		m.mu.Unlock()
		if seen {
			continue
		}
		if err := m.JoinByID(t.ID); err != nil {
			log.Printf("[WARN] enroll %s (%s): %v", t.Name, t.ID, err)
			continue
		}
		log.Printf("[INFO] enrolled in free tournament: %s", t.Name)
		joined++
	}
	return joined, nil
}
