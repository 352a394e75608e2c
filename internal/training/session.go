// Package training runs spaced-repetition training sessions over a word set.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuivocab/internal/deck"
	"github.com/verte-zerg/tuivocab/internal/grader"
	"github.com/verte-zerg/tuivocab/internal/model"
	"github.com/verte-zerg/tuivocab/internal/schedule"
)

// Recorder persists graded rounds.
type Recorder interface {
	InsertRound(ctx context.Context, round model.RoundResult) (int64, error)
}

// Options contains runtime dependencies for a Session. Zero values are replaced by defaults.
type Options struct {
	Clock    schedule.Clock
	Rand     *rand.Rand
	Logger   *slog.Logger
	Recorder Recorder
	Now      func() time.Time
}

// Session owns the deck, scheduler, and clock of one training run.
type Session struct {
	mu        sync.Mutex
	rnd       *rand.Rand
	logger    *slog.Logger
	recorder  Recorder
	now       func() time.Time
	scheduler *schedule.Scheduler
	clock     *schedule.SessionClock

	running   bool
	id        string
	setName   string
	config    model.SchedulerConfig
	deck      *deck.Deck
	current   *model.Batch
	seq       int
	observers []Observer
	channels  []*chanObserver
}

// New creates an idle session.
func New(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = schedule.RealClock{}
	}
	if opts.Rand == nil {
		opts.Rand = deck.NewRand()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		rnd:       opts.Rand,
		logger:    opts.Logger,
		recorder:  opts.Recorder,
		now:       opts.Now,
		scheduler: schedule.NewScheduler(opts.Clock),
		clock:     schedule.NewSessionClock(opts.Clock),
	}
}

// AddObserver registers an observer for batch and clock events.
func (s *Session) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Subscribe returns a channel receiving session events. It is closed by Close.
func (s *Session) Subscribe(buffer int) <-chan Event {
	o := newChanObserver(buffer)
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.channels = append(s.channels, o)
	s.mu.Unlock()
	return o.ch
}

// Start builds a deck from the set and begins emitting batches.
func (s *Session) Start(set *model.WordSet, cfg model.SchedulerConfig) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("start rejected", "reason", "already running")
		return ErrAlreadyRunning
	}
	if set == nil {
		s.mu.Unlock()
		return ErrNoSetSelected
	}
	if err := ValidateConfig(cfg); err != nil {
		s.mu.Unlock()
		return err
	}
	d, err := deck.Build(set.Pairs, s.rnd)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to build deck for %q: %w", set.Name, err)
	}
	s.running = true
	s.id = uuid.NewString()
	s.setName = set.Name
	s.config = cfg
	s.deck = d
	s.current = nil
	s.seq = 0
	id := s.id
	s.mu.Unlock()

	s.logger.Info("training started", "session", id, "set", set.Name, "words", d.Len(),
		"interval_s", cfg.IntervalSeconds, "batch_size", cfg.BatchSize)

	s.clock.Start(s.emitElapsed)
	if err := s.scheduler.Start(cfg.Interval(), s.emitBatch); err != nil {
		s.clock.Stop()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	// A Stop racing with Start may have run before the timers were armed.
	if !s.Running() {
		s.scheduler.Stop()
		s.clock.Stop()
	}
	return nil
}

// Stop halts batch emission and the clock. Deck and elapsed time remain available.
func (s *Session) Stop() {
	s.scheduler.Stop()
	s.clock.Stop()

	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.current = nil
	id := s.id
	s.mu.Unlock()

	if wasRunning {
		s.logger.Info("training stopped", "session", id, "elapsed_s", s.clock.Elapsed())
	}
}

// Close stops the session and closes all subscription channels.
func (s *Session) Close() {
	s.Stop()
	s.mu.Lock()
	channels := s.channels
	s.channels = nil
	s.mu.Unlock()
	for _, o := range channels {
		o.close()
	}
}

// SubmitAnswers grades the most recently emitted batch.
func (s *Session) SubmitAnswers(answers map[string]string) (model.Score, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return model.Score{}, ErrNoBatch
	}
	seq := s.current.Seq
	s.mu.Unlock()
	return s.SubmitBatch(seq, answers)
}

// SubmitBatch grades the batch with the given sequence number if it is still open.
func (s *Session) SubmitBatch(seq int, answers map[string]string) (model.Score, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return model.Score{}, ErrNoBatch
	}
	if s.current.Seq != seq {
		s.mu.Unlock()
		return model.Score{}, ErrBatchExpired
	}
	pairs := s.current.Pairs
	round := model.RoundResult{
		SessionID: s.id,
		SetName:   s.setName,
	}
	s.mu.Unlock()

	score := grader.Score(pairs, answers)
	round.GradedAt = s.now()
	round.ElapsedSeconds = s.clock.Elapsed()
	round.Correct = score.Correct
	round.Total = score.Total
	round.Terms = grader.Outcomes(pairs, answers)
	s.logger.Info("batch graded", "session", round.SessionID, "seq", seq,
		"correct", score.Correct, "total", score.Total)

	if s.recorder != nil {
		if _, err := s.recorder.InsertRound(context.Background(), round); err != nil {
			s.logger.Error("failed to record round", "session", round.SessionID, "error", err)
		}
	}
	return score, nil
}

// Running reports whether batches are being emitted.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Elapsed returns the seconds counted by the session clock.
func (s *Session) Elapsed() int {
	return s.clock.Elapsed()
}

// ID returns the identifier of the current or last session run.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// SetName returns the name of the set being trained.
func (s *Session) SetName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setName
}

// Config returns the scheduler settings of the current or last run.
func (s *Session) Config() model.SchedulerConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Current returns the open batch, if any.
func (s *Session) Current() (model.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.Batch{}, false
	}
	return *s.current, true
}

// DeckState returns the deck order and cursor of the current or last run.
func (s *Session) DeckState() ([]model.WordPair, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deck == nil {
		return nil, 0
	}
	return s.deck.Items(), s.deck.Cursor()
}

// ValidateConfig rejects non-positive intervals and negative batch sizes.
func ValidateConfig(cfg model.SchedulerConfig) error {
	if cfg.IntervalSeconds <= 0 {
		return fmt.Errorf("%w: interval must be > 0, got %d", ErrInvalidConfig, cfg.IntervalSeconds)
	}
	if cfg.BatchSize < 0 {
		return fmt.Errorf("%w: batch size must be >= 0, got %d", ErrInvalidConfig, cfg.BatchSize)
	}
	return nil
}

func (s *Session) emitBatch() {
	s.mu.Lock()
	if !s.running || s.deck == nil {
		s.mu.Unlock()
		return
	}
	pairs, cursor := deck.Next(s.deck, s.config.BatchSize)
	s.seq++
	batch := model.Batch{Seq: s.seq, Pairs: pairs}
	s.current = &batch
	observers := append([]Observer(nil), s.observers...)
	id := s.id
	s.mu.Unlock()

	s.logger.Debug("batch ready", "session", id, "seq", batch.Seq, "size", len(pairs), "cursor", cursor)
	for _, o := range observers {
		o.OnBatchReady(batch)
	}
}

func (s *Session) emitElapsed(elapsed int) {
	s.mu.Lock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	for _, o := range observers {
		o.OnElapsedTick(elapsed)
	}
}
