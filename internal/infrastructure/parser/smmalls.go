package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ScreeningScanner/internal/domain"
	"ScreeningScanner/internal/ports"
	"ScreeningScanner/internal/scraper"
)

// DefaultSmEndpoint is the smcinema.com ajax API shared by every SM branch.
const DefaultSmEndpoint = "https://smcinema.com/ajaxMovies.php"

var smCinemaExpr = regexp.MustCompile(`^([0-9]|IMAX)$`)

// smSchedule is one showtime record returned by the getSchedules action.
type smSchedule struct {
	CinemaCode string `json:"cinema_code"`
	FilmFormat string `json:"film_format"`
	Screening  string `json:"screening_datetime"`
	Price      string `json:"price"`
	Rating     string `json:"mtrcb_rating"`
}

// SmMallsScraper pulls schedules from the SM Cinema API for one branch
// code. The API is a two-step listing: one call for titles, one call per
// title for its showtimes, issued strictly sequentially.
type SmMallsScraper struct {
	name       string
	api        ports.APIClient
	endpoint   string
	branchCode string
	loc        *time.Location
	logger     *slog.Logger
	movies     []domain.MovieRecord
}

var _ scraper.Scraper = (*SmMallsScraper)(nil)

// NewSmMallsScraper wires the API client and branch code. An empty
// endpoint falls back to DefaultSmEndpoint.
func NewSmMallsScraper(name string, api ports.APIClient, endpoint, branchCode string, loc *time.Location, logger *slog.Logger) *SmMallsScraper {
	if endpoint == "" {
		endpoint = DefaultSmEndpoint
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SmMallsScraper{
		name:       name,
		api:        api,
		endpoint:   endpoint,
		branchCode: branchCode,
		loc:        loc,
		logger:     logger,
	}
}

// Name identifies the scraper inside the registry.
func (s *SmMallsScraper) Name() string {
	return s.name
}

// HasMovies reports whether the last fetch collected any schedules.
func (s *SmMallsScraper) HasMovies() bool {
	return len(s.movies) > 0
}

// Movies returns the consolidated movies in first-seen order.
func (s *SmMallsScraper) Movies() []domain.MovieRecord {
	return s.movies
}

// Fetch lists the branch's movies and then their showtimes. The API's
// auditorium naming, film-format codes, and prices are hard contracts:
// a value outside the expected grammar aborts the fetch. Only the MTRCB
// rating degrades gracefully.
func (s *SmMallsScraper) Fetch(ctx context.Context) error {
	var list struct {
		Movies []struct {
			Title string `json:"movie_title"`
		} `json:"movies"`
	}

	err := s.api.PostJSON(ctx, s.endpoint, map[string]string{
		"action":      "getMovies",
		"branch_code": s.branchCode,
	}, &list)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidResponse) {
			return scraper.NewParseError(s.name, "Failed to decode movie list.", err.Error())
		}
		return fmt.Errorf("list movies: %w", err)
	}

	if len(list.Movies) == 0 {
		return scraper.NewParseError(s.name, "Failed to extract movies!", "")
	}

	cons := scraper.NewConsolidator()
	for _, movie := range list.Movies {
		title, is3D := scraper.NormalizeTitle(movie.Title)
		if title == "" {
			s.logger.Error("failed to extract a movie title, skipping")
			continue
		}

		if err := s.fetchSchedules(ctx, movie.Title, title, is3D, cons); err != nil {
			return err
		}
	}

	s.movies = cons.Records()
	return nil
}

func (s *SmMallsScraper) fetchSchedules(ctx context.Context, rawTitle, title string, is3D bool, cons *scraper.Consolidator) error {
	var payload struct {
		Schedules []smSchedule `json:"schedules"`
	}

	err := s.api.PostJSON(ctx, s.endpoint, map[string]string{
		"action":      "getSchedules",
		"branch_code": s.branchCode,
		"movie_title": rawTitle,
	}, &payload)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidResponse) {
			return scraper.NewParseError(s.name, "Failed to decode schedules.", err.Error())
		}
		return fmt.Errorf("list schedules for %s: %w", title, err)
	}

	for _, sched := range payload.Schedules {
		st, rating, err := s.processSchedule(sched)
		if err != nil {
			return err
		}
		if is3D && st.Format == "" {
			st.Format = "3D"
		}
		cons.Add(scraper.Block{
			Title:          title,
			Rating:         rating,
			ScreeningTimes: []domain.ScreeningTime{st},
		})
	}

	return nil
}

func (s *SmMallsScraper) processSchedule(sched smSchedule) (domain.ScreeningTime, string, error) {
	var st domain.ScreeningTime

	code := strings.TrimSpace(sched.CinemaCode)
	if !smCinemaExpr.MatchString(code) {
		return st, "", scraper.NewParseError(s.name, "Invalid cinema code.", code)
	}

	var format string
	switch strings.ToUpper(strings.TrimSpace(sched.FilmFormat)) {
	case "F2D", "STANDARD":
		format = ""
	case "F3D":
		format = "3D"
	default:
		return st, "", scraper.NewParseError(s.name, "Unknown film format.", sched.FilmFormat)
	}

	// A plain 2D showing in the IMAX auditorium is an IMAX screening.
	if format == "" && code == "IMAX" {
		format = "IMAX"
	}

	// The API always carries a price; a zero here is a silent parse
	// failure upstream, not a free screening.
	price, _ := strconv.Atoi(strings.TrimSpace(sched.Price))
	if price == 0 {
		return st, "", scraper.NewParseError(s.name, "Invalid ticket price.", sched.Price)
	}

	ts, err := time.ParseInLocation("2006-01-02 15:04:05", strings.TrimSpace(sched.Screening), s.loc)
	if err != nil {
		return st, "", scraper.NewParseError(s.name, "Invalid screening time.", sched.Screening)
	}

	rating := strings.TrimSpace(sched.Rating)
	switch {
	case rating == "NYR":
		// Not yet rated; store no rating.
		rating = ""
	case domain.ValidRating(rating):
	default:
		if rating != "" {
			s.logger.Warn("not a valid MTRCB rating", "rating", rating)
		}
		rating = ""
	}

	st = domain.ScreeningTime{
		Cinema:  domain.Cinema(code),
		Time:    ts,
		Format:  format,
		Tickets: []domain.Ticket{{Price: price}},
	}

	return st, rating, nil
}
