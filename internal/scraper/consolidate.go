package scraper

import "ScreeningScanner/internal/domain"

// Block is a source-specific intermediate unit: one cinema/showtime group
// for one movie title, already normalized. Blocks are ephemeral; they are
// folded into MovieRecords by the Consolidator and discarded.
type Block struct {
	Title          string
	Rating         string
	ScreeningTimes []domain.ScreeningTime
}

// Consolidator collapses repeated blocks into one MovieRecord per distinct
// title. Records keep the first-seen order of titles; screening times are
// concatenated in input order, and a block carrying a rating overwrites
// the rating stored so far.
type Consolidator struct {
	index   map[string]int
	records []domain.MovieRecord
}

// NewConsolidator builds an empty consolidator.
func NewConsolidator() *Consolidator {
	return &Consolidator{index: map[string]int{}}
}

// Add folds one block into the running collection.
func (c *Consolidator) Add(b Block) {
	if i, ok := c.index[b.Title]; ok {
		c.records[i].ScreeningTimes = append(c.records[i].ScreeningTimes, b.ScreeningTimes...)
		if b.Rating != "" {
			c.records[i].Rating = b.Rating
		}
		return
	}

	c.index[b.Title] = len(c.records)
	c.records = append(c.records, domain.MovieRecord{
		Title:          b.Title,
		Rating:         b.Rating,
		ScreeningTimes: b.ScreeningTimes,
	})
}

// Records returns the consolidated movies in first-seen title order.
func (c *Consolidator) Records() []domain.MovieRecord {
	return c.records
}

// Empty reports whether no movies were collected.
func (c *Consolidator) Empty() bool {
	return len(c.records) == 0
}
