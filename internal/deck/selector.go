package deck

import "github.com/verte-zerg/tuivocab/internal/model"

// Next selects the next batch from the deck and advances its cursor.
//
// A batch size of 0 returns the whole deck and rewinds the cursor. When the
// batch runs past the end of the deck, the remaining tail is taken, the deck
// is reshuffled, and the batch is completed from the front of the new order;
// the cursor then points just past the items taken after the wrap. The
// overflow is clamped to the deck length, so a batch larger than twice the
// remaining items comes back short. Negative sizes return nil.
func Next(d *Deck, batchSize int) ([]model.WordPair, int) {
	if batchSize < 0 {
		return nil, d.cursor
	}
	if batchSize == 0 {
		d.cursor = 0
		return d.Items(), d.cursor
	}

	remaining := len(d.items) - d.cursor
	if batchSize <= remaining {
		batch := make([]model.WordPair, batchSize)
		copy(batch, d.items[d.cursor:d.cursor+batchSize])
		d.cursor += batchSize
		return batch, d.cursor
	}

	batch := make([]model.WordPair, 0, batchSize)
	batch = append(batch, d.items[d.cursor:]...)
	d.Reshuffle()
	overflow := batchSize - remaining
	if overflow > len(d.items) {
		overflow = len(d.items)
	}
	batch = append(batch, d.items[:overflow]...)
	d.cursor = overflow
	return batch, d.cursor
}
