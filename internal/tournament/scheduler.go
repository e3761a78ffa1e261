package tournament

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// HourlyResetter is the part of the bot the scheduler pokes at the top of
// every hour.
type HourlyResetter interface {
	ResetHourlyCounter()
}

// Scheduler runs the periodic tournament sweep and the hourly trade-counter
// reset on cron schedules.
type Scheduler struct {
	Cron    *cron.Cron
	Manager *Manager
	Bot     HourlyResetter
}

// NewScheduler creates a scheduler with second-granularity cron expressions.
func NewScheduler(m *Manager, bot HourlyResetter) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Manager: m,
		Bot:     bot,
	}
}

// Register wires the enrollment sweep at the given cron spec plus the hourly
// counter reset.
func (s *Scheduler) Register(sweepCron string) error {
	if _, err := s.Cron.AddFunc(sweepCron, s.sweep); err != nil {
		return fmt.Errorf("register tournament sweep: %w", err)
	}
	// Counter reset: top of every hour.
	if _, err := s.Cron.AddFunc("0 0 * * * *", func() {
		s.Bot.ResetHourlyCounter()
		log.Println("[INFO] hourly trade counter reset")
	}); err != nil {
		return fmt.Errorf("register hourly reset: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunSweepNow executes the enrollment sweep immediately (for manual trigger).
func (s *Scheduler) RunSweepNow() {
	s.sweep()
}

func (s *Scheduler) sweep() {
	log.Println("[INFO] running tournament enrollment sweep")
	joined, err := s.Manager.EnrollFree()
	if err != nil {
		log.Printf("[ERROR] tournament sweep: %v", err)
		return
	}
	if joined > 0 {
		log.Printf("[INFO] tournament sweep joined %d tournaments", joined)
	}
}
