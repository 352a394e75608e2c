package training

import (
	"errors"

	"github.com/verte-zerg/tuivocab/internal/deck"
)

// Errors returned by Session. All of them leave any running session untouched.
var (
	ErrEmptySet       = deck.ErrEmptySet
	ErrNoSetSelected  = errors.New("no word set selected")
	ErrAlreadyRunning = errors.New("training is already in progress")
	ErrInvalidConfig  = errors.New("invalid training config")
	ErrNoBatch        = errors.New("no batch is open for grading")
	ErrBatchExpired   = errors.New("batch was superseded by a newer one")
)
