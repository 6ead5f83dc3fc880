package domain

import (
	"strconv"
	"time"
)

// Ratings contains the official MTRCB ratings. A rating outside this set is
// never stored on a MovieRecord.
var Ratings = []string{"G", "PG", "R-13", "R-16", "R-18"}

// ValidRating reports whether s is an official MTRCB rating.
func ValidRating(s string) bool {
	for _, r := range Ratings {
		if s == r {
			return true
		}
	}
	return false
}

// Cinema identifies an auditorium: a screen number ("1".."9") or a named
// special screen such as "IMAX".
type Cinema string

// CinemaNumber builds a Cinema from a plain screen number.
func CinemaNumber(n int) Cinema {
	return Cinema(strconv.Itoa(n))
}

// Ticket is a single price entry. Name is set only for tiered seating
// ("Lower Deck"/"Upper Deck").
type Ticket struct {
	Price int
	Name  string
}

// ScreeningTime is one showing of one movie. Format is empty for standard
// 2D screenings.
type ScreeningTime struct {
	Cinema  Cinema
	Time    time.Time
	Format  string
	Tickets []Ticket
}

// MovieRecord is one normalized movie collected during a single fetch.
// Title is lower-cased and markup-free; Rating is empty when the source
// omitted it or the value failed validation. ScreeningTimes keeps append
// order, not chronological order.
type MovieRecord struct {
	Title          string
	Rating         string
	ScreeningTimes []ScreeningTime
}
