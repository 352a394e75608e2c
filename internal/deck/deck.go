// Package deck holds the shuffled, cyclic pool of word pairs for a training session.
package deck

import (
	"errors"
	"math/rand"
	"time"

	"github.com/verte-zerg/tuivocab/internal/model"
)

// ErrEmptySet is returned when a deck is built from no pairs.
var ErrEmptySet = errors.New("word set is empty")

// Deck is a shuffled sequence of pairs with a read cursor.
type Deck struct {
	items  []model.WordPair
	cursor int
	rnd    *rand.Rand
}

// NewRand returns a random source seeded with the current time.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Build copies pairs into a new deck, shuffles them, and sets the cursor to 0.
// A nil rnd is replaced by a time-seeded source.
func Build(pairs []model.WordPair, rnd *rand.Rand) (*Deck, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptySet
	}
	if rnd == nil {
		rnd = NewRand()
	}
	items := make([]model.WordPair, len(pairs))
	copy(items, pairs)
	d := &Deck{items: items, rnd: rnd}
	d.Reshuffle()
	return d, nil
}

// Reshuffle permutes the items in place. The cursor is left for the caller.
func (d *Deck) Reshuffle() {
	d.rnd.Shuffle(len(d.items), func(i, j int) {
		d.items[i], d.items[j] = d.items[j], d.items[i]
	})
}

// Len returns the number of pairs in the deck.
func (d *Deck) Len() int {
	return len(d.items)
}

// Cursor returns how much of the current shuffle has been consumed.
func (d *Deck) Cursor() int {
	return d.cursor
}

// Items returns a copy of the pairs in their current order.
func (d *Deck) Items() []model.WordPair {
	out := make([]model.WordPair, len(d.items))
	copy(out, d.items)
	return out
}
