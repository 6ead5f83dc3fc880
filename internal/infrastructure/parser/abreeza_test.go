package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ScreeningScanner/internal/domain"
	"ScreeningScanner/internal/infrastructure/fetch"
	"ScreeningScanner/internal/scraper"
)

const abreezaFixture = `
<div class="rounded-half-nbp">
  <table width="135">
    <tr><td>Cinema 2</td></tr>
    <tr><td class="SEARCH_TITLE">(3D) Movie X</td></tr>
    <tr><td class="SEARCH_RATING">Rating: R-13</td></tr>
    <tr><td class="SEARCH_PRICE">Price: 250</td></tr>
    <tr><td class="SEARCH_DATE">Jan 5, 2024</td></tr>
    <tr><td class="SEARCH_SCHED">2:30 pm</td></tr>
    <tr><td class="SEARCH_SCHED">garbage</td></tr>
  </table>
</div>`

func abreezaServer(t *testing.T, body string) *AbreezaScraper {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	fetcher := fetch.NewHTTPPageFetcher(server.Client())
	return NewAbreezaScraper(fetcher, server.URL, time.UTC, nil)
}

func TestAbreezaFetch(t *testing.T) {
	t.Parallel()

	sc := abreezaServer(t, abreezaFixture)
	if err := sc.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if !sc.HasMovies() {
		t.Fatal("expected movies to be collected")
	}

	movies := sc.Movies()
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(movies))
	}

	movie := movies[0]
	if movie.Title != "movie x" {
		t.Fatalf("unexpected title: %q", movie.Title)
	}
	if movie.Rating != "R-13" {
		t.Fatalf("unexpected rating: %q", movie.Rating)
	}

	// The garbage time cell is skipped, not fatal.
	if len(movie.ScreeningTimes) != 1 {
		t.Fatalf("expected 1 screening time, got %d", len(movie.ScreeningTimes))
	}

	st := movie.ScreeningTimes[0]
	if st.Cinema != domain.Cinema("2") {
		t.Fatalf("unexpected cinema: %q", st.Cinema)
	}
	want := time.Date(2024, time.January, 5, 14, 30, 0, 0, time.UTC)
	if !st.Time.Equal(want) {
		t.Fatalf("unexpected time: %v", st.Time)
	}
	if st.Format != "3D" {
		t.Fatalf("unexpected format: %q", st.Format)
	}
	if len(st.Tickets) != 1 || st.Tickets[0].Price != 250 {
		t.Fatalf("unexpected tickets: %+v", st.Tickets)
	}
}

func TestAbreezaFetchNoBlocks(t *testing.T) {
	t.Parallel()

	sc := abreezaServer(t, `<html><body><p>maintenance</p></body></html>`)
	err := sc.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for page without blocks")
	}
	if !scraper.IsParseError(err) {
		t.Fatalf("expected a structural ParseError, got %v", err)
	}
}

func TestAbreezaFetchInvalidCinema(t *testing.T) {
	t.Parallel()

	fixture := `
<div class="rounded-half-nbp">
  <table width="135">
    <tr><td>Cinema 9</td></tr>
    <tr><td class="SEARCH_TITLE">Movie X</td></tr>
    <tr><td class="SEARCH_DATE">Jan 5, 2024</td></tr>
  </table>
</div>`

	sc := abreezaServer(t, fixture)
	err := sc.Fetch(context.Background())
	if !scraper.IsParseError(err) {
		t.Fatalf("expected a structural ParseError, got %v", err)
	}
}

func TestAbreezaFetchInvalidDate(t *testing.T) {
	t.Parallel()

	fixture := `
<div class="rounded-half-nbp">
  <table width="135">
    <tr><td>Cinema 1</td></tr>
    <tr><td class="SEARCH_TITLE">Movie X</td></tr>
    <tr><td class="SEARCH_DATE">sometime soon</td></tr>
  </table>
</div>`

	sc := abreezaServer(t, fixture)
	err := sc.Fetch(context.Background())
	if !scraper.IsParseError(err) {
		t.Fatalf("expected a structural ParseError, got %v", err)
	}
}

func TestAbreezaFetchSkipsBlockWithoutTitle(t *testing.T) {
	t.Parallel()

	fixture := `
<div class="rounded-half-nbp">
  <table width="135">
    <tr><td>Cinema 1</td></tr>
    <tr><td class="SEARCH_TITLE"></td></tr>
  </table>
  <table width="135">
    <tr><td>Cinema 2</td></tr>
    <tr><td class="SEARCH_TITLE">Movie Y</td></tr>
    <tr><td class="SEARCH_RATING">Rating: not-a-rating</td></tr>
    <tr><td class="SEARCH_PRICE">Price: free!!</td></tr>
    <tr><td class="SEARCH_DATE">Feb 14, 2024</td></tr>
    <tr><td class="SEARCH_SCHED">7:15 pm</td></tr>
  </table>
</div>`

	sc := abreezaServer(t, fixture)
	if err := sc.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	movies := sc.Movies()
	if len(movies) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(movies))
	}
	if movies[0].Title != "movie y" {
		t.Fatalf("unexpected title: %q", movies[0].Title)
	}
	if movies[0].Rating != "" {
		t.Fatalf("invalid rating must be dropped, got %q", movies[0].Rating)
	}
	if len(movies[0].ScreeningTimes) != 1 {
		t.Fatalf("expected 1 screening time, got %d", len(movies[0].ScreeningTimes))
	}
	if movies[0].ScreeningTimes[0].Tickets != nil {
		t.Fatalf("invalid price must leave tickets absent, got %+v", movies[0].ScreeningTimes[0].Tickets)
	}
}
