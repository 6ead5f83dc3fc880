package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScreeningScanner/internal/domain"
)

func screeningAt(hour int) domain.ScreeningTime {
	return domain.ScreeningTime{
		Cinema: domain.CinemaNumber(1),
		Time:   time.Date(2024, time.January, 5, hour, 0, 0, 0, time.UTC),
	}
}

func TestConsolidatorMergesSameTitle(t *testing.T) {
	t.Parallel()

	a := Block{Title: "movie x", Rating: "PG", ScreeningTimes: []domain.ScreeningTime{screeningAt(14)}}
	b := Block{Title: "movie x", ScreeningTimes: []domain.ScreeningTime{screeningAt(17)}}

	cons := NewConsolidator()
	cons.Add(a)
	cons.Add(b)

	records := cons.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "movie x", records[0].Title)
	assert.Equal(t, "PG", records[0].Rating, "block without rating must not clear the stored one")
	assert.Len(t, records[0].ScreeningTimes, 2)
}

func TestConsolidatorOrderInsensitiveExceptTimes(t *testing.T) {
	t.Parallel()

	a := Block{Title: "movie x", Rating: "PG", ScreeningTimes: []domain.ScreeningTime{screeningAt(14)}}
	b := Block{Title: "movie x", Rating: "R-13", ScreeningTimes: []domain.ScreeningTime{screeningAt(17)}}

	forward := NewConsolidator()
	forward.Add(a)
	forward.Add(b)

	backward := NewConsolidator()
	backward.Add(b)
	backward.Add(a)

	require.Len(t, forward.Records(), 1)
	require.Len(t, backward.Records(), 1)

	// The last non-empty rating wins; times concatenate in input order.
	assert.Equal(t, "R-13", forward.Records()[0].Rating)
	assert.Equal(t, "PG", backward.Records()[0].Rating)
	assert.Len(t, forward.Records()[0].ScreeningTimes, 2)
	assert.Len(t, backward.Records()[0].ScreeningTimes, 2)
	assert.Equal(t, forward.Records()[0].ScreeningTimes[0], backward.Records()[0].ScreeningTimes[1])
}

func TestConsolidatorKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	cons := NewConsolidator()
	cons.Add(Block{Title: "zebra"})
	cons.Add(Block{Title: "alpha"})
	cons.Add(Block{Title: "zebra"})

	records := cons.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "zebra", records[0].Title)
	assert.Equal(t, "alpha", records[1].Title)
}

func TestConsolidatorEmpty(t *testing.T) {
	t.Parallel()

	cons := NewConsolidator()
	assert.True(t, cons.Empty())
	cons.Add(Block{Title: "movie x"})
	assert.False(t, cons.Empty())
}
