package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScreeningScanner/internal/domain"
	"ScreeningScanner/internal/ports"
	"ScreeningScanner/internal/scraper"
)

// stubAPI replays canned JSON keyed by action (plus movie title for
// getSchedules) and records the forms it was called with.
type stubAPI struct {
	responses map[string]string
	err       error
	calls     []map[string]string
}

func (s *stubAPI) PostJSON(_ context.Context, _ string, form map[string]string, out any) error {
	s.calls = append(s.calls, form)
	if s.err != nil {
		return s.err
	}

	key := form["action"]
	if title := form["movie_title"]; title != "" {
		key += ":" + title
	}

	body, ok := s.responses[key]
	if !ok {
		return fmt.Errorf("unexpected call %s", key)
	}
	return json.Unmarshal([]byte(body), out)
}

func newSmTest(responses map[string]string) (*SmMallsScraper, *stubAPI) {
	api := &stubAPI{responses: responses}
	sc := NewSmMallsScraper("sm-city-davao", api, "", "SM_DVO", time.UTC, nil)
	return sc, api
}

func TestSmMallsFetch(t *testing.T) {
	t.Parallel()

	sc, api := newSmTest(map[string]string{
		"getMovies": `{"movies":[{"movie_title":"Movie X"},{"movie_title":"Movie Y"}]}`,
		"getSchedules:Movie X": `{"schedules":[
			{"cinema_code":"3","film_format":"F2D","screening_datetime":"2024-01-05 14:30:00","price":"250","mtrcb_rating":"PG"},
			{"cinema_code":"3","film_format":"F3D","screening_datetime":"2024-01-05 19:00:00","price":"320","mtrcb_rating":"PG"}
		]}`,
		"getSchedules:Movie Y": `{"schedules":[
			{"cinema_code":"IMAX","film_format":"STANDARD","screening_datetime":"2024-01-05 16:00:00","price":"400","mtrcb_rating":"NYR"}
		]}`,
	})

	require.NoError(t, sc.Fetch(context.Background()))
	require.True(t, sc.HasMovies())

	movies := sc.Movies()
	require.Len(t, movies, 2)

	x := movies[0]
	assert.Equal(t, "movie x", x.Title)
	assert.Equal(t, "PG", x.Rating)
	require.Len(t, x.ScreeningTimes, 2)
	assert.Equal(t, domain.Cinema("3"), x.ScreeningTimes[0].Cinema)
	assert.Empty(t, x.ScreeningTimes[0].Format, "F2D stores no format")
	assert.Equal(t, "3D", x.ScreeningTimes[1].Format)
	assert.True(t, x.ScreeningTimes[0].Time.Equal(time.Date(2024, time.January, 5, 14, 30, 0, 0, time.UTC)))
	require.Len(t, x.ScreeningTimes[0].Tickets, 1)
	assert.Equal(t, 250, x.ScreeningTimes[0].Tickets[0].Price)

	y := movies[1]
	assert.Equal(t, "movie y", y.Title)
	assert.Empty(t, y.Rating, "NYR stores no rating")
	require.Len(t, y.ScreeningTimes, 1)
	assert.Equal(t, domain.Cinema("IMAX"), y.ScreeningTimes[0].Cinema)
	assert.Equal(t, "IMAX", y.ScreeningTimes[0].Format, "2D in the IMAX auditorium upgrades the format")

	// One listing call plus one schedules call per title, in order.
	require.Len(t, api.calls, 3)
	assert.Equal(t, "getMovies", api.calls[0]["action"])
	assert.Equal(t, "SM_DVO", api.calls[0]["branch_code"])
	assert.Equal(t, "Movie X", api.calls[1]["movie_title"])
	assert.Equal(t, "Movie Y", api.calls[2]["movie_title"])
}

func TestSmMallsFetchUnknownFormatIsFatal(t *testing.T) {
	t.Parallel()

	sc, _ := newSmTest(map[string]string{
		"getMovies": `{"movies":[{"movie_title":"Movie X"}]}`,
		"getSchedules:Movie X": `{"schedules":[
			{"cinema_code":"1","film_format":"F4DX","screening_datetime":"2024-01-05 14:30:00","price":"250","mtrcb_rating":"PG"}
		]}`,
	})

	err := sc.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, scraper.IsParseError(err))
}

func TestSmMallsFetchZeroPriceIsFatal(t *testing.T) {
	t.Parallel()

	sc, _ := newSmTest(map[string]string{
		"getMovies": `{"movies":[{"movie_title":"Movie X"}]}`,
		"getSchedules:Movie X": `{"schedules":[
			{"cinema_code":"1","film_format":"F2D","screening_datetime":"2024-01-05 14:30:00","price":"free","mtrcb_rating":"PG"}
		]}`,
	})

	err := sc.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, scraper.IsParseError(err))
}

func TestSmMallsFetchInvalidCinemaCodeIsFatal(t *testing.T) {
	t.Parallel()

	sc, _ := newSmTest(map[string]string{
		"getMovies": `{"movies":[{"movie_title":"Movie X"}]}`,
		"getSchedules:Movie X": `{"schedules":[
			{"cinema_code":"VIP-LOUNGE","film_format":"F2D","screening_datetime":"2024-01-05 14:30:00","price":"250","mtrcb_rating":"PG"}
		]}`,
	})

	err := sc.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, scraper.IsParseError(err))
}

func TestSmMallsFetchUnknownRatingIsDropped(t *testing.T) {
	t.Parallel()

	sc, _ := newSmTest(map[string]string{
		"getMovies": `{"movies":[{"movie_title":"Movie X"}]}`,
		"getSchedules:Movie X": `{"schedules":[
			{"cinema_code":"1","film_format":"F2D","screening_datetime":"2024-01-05 14:30:00","price":"250","mtrcb_rating":"XXX"}
		]}`,
	})

	require.NoError(t, sc.Fetch(context.Background()))
	assert.Empty(t, sc.Movies()[0].Rating)
}

func TestSmMallsFetchEmptyListingIsFatal(t *testing.T) {
	t.Parallel()

	sc, _ := newSmTest(map[string]string{
		"getMovies": `{"movies":[]}`,
	})

	err := sc.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, scraper.IsParseError(err))
}

func TestSmMallsFetchUndecodableResponseIsFatal(t *testing.T) {
	t.Parallel()

	api := &stubAPI{err: fmt.Errorf("decode response: %w", ports.ErrInvalidResponse)}
	sc := NewSmMallsScraper("sm-city-davao", api, "", "SM_DVO", time.UTC, nil)

	err := sc.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, scraper.IsParseError(err))
}
