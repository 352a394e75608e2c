// Package model defines shared data structures.
package model

import "time"

// Default training settings used when no configuration is stored.
const (
	DefaultIntervalSeconds = 300
	DefaultBatchSize       = 0
)

// WordPair is a single term and its expected definition.
type WordPair struct {
	Term       string `yaml:"term"`
	Definition string `yaml:"definition"`
}

// SetInfo describes a word set in the catalog.
type SetInfo struct {
	ID          int64
	Description string
}

// WordSet is a snapshot of a stored set and its pairs.
type WordSet struct {
	ID          int64
	Name        string
	Description string
	Pairs       []WordPair
}

// SchedulerConfig defines how often batches are emitted and how large they are.
// BatchSize 0 means the whole deck is shown every round.
type SchedulerConfig struct {
	IntervalSeconds int
	BatchSize       int
}

// DefaultSchedulerConfig returns the settings used when nothing is stored.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		IntervalSeconds: DefaultIntervalSeconds,
		BatchSize:       DefaultBatchSize,
	}
}

// Interval returns the configured interval as a duration.
func (c SchedulerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Batch is one round of pairs emitted by a training session.
type Batch struct {
	Seq   int
	Pairs []WordPair
}

// Score is the result of grading one batch.
type Score struct {
	Correct int
	Total   int
}

// TermOutcome records whether a single term was answered correctly.
type TermOutcome struct {
	Term    string
	Correct bool
}

// RoundResult captures a graded batch for persistence.
type RoundResult struct {
	SessionID      string
	SetName        string
	GradedAt       time.Time
	ElapsedSeconds int
	Correct        int
	Total          int
	Terms          []TermOutcome
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	SetName     string
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// RoundAggregate summarizes a stored round for reporting.
type RoundAggregate struct {
	RoundID        int64
	SessionID      string
	SetName        string
	GradedAt       time.Time
	ElapsedSeconds int
	Correct        int
	Total          int
}

// TermAggregate aggregates term outcomes across rounds.
type TermAggregate struct {
	Term      string
	Correct   int
	Incorrect int
}
