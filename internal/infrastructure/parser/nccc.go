package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ScreeningScanner/internal/domain"
	"ScreeningScanner/internal/ports"
	"ScreeningScanner/internal/scraper"
)

const ncccSource = "NCCC"

var (
	ncccDateExpr   = regexp.MustCompile(`(?i)^(?:January|February|March|April|May|June|July|August|September|October|November|December)\s[0-3][0-9],\s20[0-9]{2}$`)
	ncccCinemaExpr = regexp.MustCompile(`^cinema[1-4]$`)
	ncccBrExpr     = regexp.MustCompile(`(?i)<br\s*/?>`)
	ncccTitleExpr  = regexp.MustCompile(`(?i)^<b>(.+)</b>$`)
	ncccRatingExpr = regexp.MustCompile(`^(PG-13|GP|G|PG|R-13|R-16|R-18)$`)
	ncccTimeExpr   = regexp.MustCompile(`((?:1[012]|[1-9]):[0-5][0-9])`)
	ncccAfternoon  = regexp.MustCompile(`^(1|2):`)
)

// NcccScraper parses the NCCC Mall of Davao cinema page. Each block is one
// cinema; the block body interleaves movie titles, ratings, and bare
// times-of-day, which are expanded across the page's running-date range
// once scanning completes.
type NcccScraper struct {
	fetcher ports.PageFetcher
	url     string
	loc     *time.Location
	logger  *slog.Logger
	movies  []domain.MovieRecord
}

var _ scraper.Scraper = (*NcccScraper)(nil)

// NewNcccScraper wires the page fetcher and the cinema page URL.
func NewNcccScraper(fetcher ports.PageFetcher, url string, loc *time.Location, logger *slog.Logger) *NcccScraper {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NcccScraper{fetcher: fetcher, url: url, loc: loc, logger: logger}
}

// Name identifies the scraper inside the registry.
func (n *NcccScraper) Name() string {
	return "nccc"
}

// HasMovies reports whether the last fetch collected any schedules.
func (n *NcccScraper) HasMovies() bool {
	return len(n.movies) > 0
}

// Movies returns the consolidated movies in first-seen order.
func (n *NcccScraper) Movies() []domain.MovieRecord {
	return n.movies
}

// Fetch loads the cinema page, scans every now-showing block, and expands
// the collected times-of-day across the running-date period.
func (n *NcccScraper) Fetch(ctx context.Context) error {
	raw, err := n.fetcher.FetchPage(ctx, n.url)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return scraper.NewParseError(ncccSource, "Failed to parse page.", err.Error())
	}

	blocks := doc.Find(".movie-thumbnail-nowshowing")
	if blocks.Length() == 0 {
		return scraper.NewParseError(ncccSource, "Failed to extract movies!", "")
	}

	period, err := n.extractDatePeriod(doc)
	if err != nil {
		return err
	}

	var entries []ncccEntry
	var blockErr error
	blocks.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		blockEntries, err := n.processBlock(sel)
		if err != nil {
			blockErr = err
			return false
		}
		entries = append(entries, blockEntries...)
		return true
	})
	if blockErr != nil {
		return blockErr
	}

	cons := scraper.NewConsolidator()
	for _, entry := range entries {
		cons.Add(n.buildBlock(entry, period))
	}

	n.movies = cons.Records()
	return nil
}

// extractDatePeriod reads the "Running Date: <start> - <end>" banner. Both
// dates anchor every showtime on the page, so a malformed one is fatal.
// The range includes the end date.
func (n *NcccScraper) extractDatePeriod(doc *goquery.Document) ([]time.Time, error) {
	text := strings.TrimSpace(doc.Find(".movie-info-contact").First().Text())
	text = strings.Replace(text, "Running Date: ", "", 1)

	parts := strings.Split(text, " - ")
	if len(parts) != 2 {
		return nil, scraper.NewParseError(ncccSource, "Invalid running date range.", text)
	}

	var bounds []time.Time
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !ncccDateExpr.MatchString(part) {
			return nil, scraper.NewParseError(ncccSource, "Invalid screening date.", part)
		}
		d, err := parseLongDate(part, n.loc)
		if err != nil {
			return nil, scraper.NewParseError(ncccSource, "Invalid screening date.", part)
		}
		bounds = append(bounds, d)
	}

	return daysBetween(bounds[0], bounds[1]), nil
}

// ncccEntry is one movie scanned out of a cinema block, its times still
// times-of-day strings awaiting date expansion.
type ncccEntry struct {
	title  string
	rating string
	cinema int
	is3D   bool
	times  []string
}

func (n *NcccScraper) processBlock(sel *goquery.Selection) ([]ncccEntry, error) {
	cinemaClass := strings.TrimSpace(sel.Find("div").First().AttrOr("class", ""))
	if !ncccCinemaExpr.MatchString(cinemaClass) {
		return nil, scraper.NewParseError(ncccSource, "Invalid cinema name.", cinemaClass)
	}
	cinema, _ := strconv.Atoi(strings.TrimPrefix(cinemaClass, "cinema"))

	body, err := sel.Find(".movie-title").Html()
	if err != nil {
		return nil, scraper.NewParseError(ncccSource, "Failed to read block body.", err.Error())
	}

	var entries []ncccEntry
	var current *ncccEntry
	reachedAfternoon := false

	for _, line := range ncccBrExpr.Split(body, -1) {
		line = strings.TrimSpace(line)

		if m := ncccTitleExpr.FindStringSubmatch(line); m != nil {
			title, is3D := scraper.NormalizeTitle(m[1])
			entries = append(entries, ncccEntry{title: title, cinema: cinema, is3D: is3D})
			current = &entries[len(entries)-1]
			continue
		}

		if m := ncccRatingExpr.FindStringSubmatch(line); m != nil {
			if current == nil {
				n.logger.Warn("rating before any movie title, skipping", "rating", m[1])
				continue
			}
			rating := normalizeNcccRating(m[1])
			if !domain.ValidRating(rating) {
				n.logger.Warn("unknown MTRCB rating, removing it for now", "rating", rating)
				continue
			}
			current.rating = rating
			continue
		}

		if m := ncccTimeExpr.FindStringSubmatch(line); m != nil {
			if current == nil {
				n.logger.Warn("time before any movie title, skipping", "time", m[1])
				continue
			}
			clock := m[1]

			// The page lists times in order without meridiems; once the
			// listing crosses into 1:00 or 2:00 everything after is in the
			// afternoon. Noon itself is always PM.
			if !reachedAfternoon && ncccAfternoon.MatchString(clock) {
				reachedAfternoon = true
			}
			if reachedAfternoon || clock == "12:00" {
				clock += " PM"
			} else {
				clock += " AM"
			}
			current.times = append(current.times, clock)
			continue
		}

		if line != "Schedule" && line != "" {
			n.logger.Warn("unknown line cannot be processed", "line", line)
		}
	}

	return entries, nil
}

func (n *NcccScraper) buildBlock(entry ncccEntry, period []time.Time) scraper.Block {
	var times []domain.ScreeningTime
	for _, clock := range entry.times {
		for _, date := range period {
			ts, err := time.ParseInLocation("2006-01-02 3:04 PM", date.Format("2006-01-02")+" "+clock, n.loc)
			if err != nil {
				n.logger.Warn("not a valid time, skipping", "time", clock)
				continue
			}

			st := domain.ScreeningTime{
				Cinema: domain.CinemaNumber(entry.cinema),
				Time:   ts,
			}
			if entry.is3D {
				st.Format = "3D"
			}
			times = append(times, st)
		}
	}

	return scraper.Block{Title: entry.title, Rating: entry.rating, ScreeningTimes: times}
}

// normalizeNcccRating maps the page's loose rating labels onto the
// official MTRCB set.
func normalizeNcccRating(code string) string {
	switch code {
	case "PG-13":
		return "PG"
	case "GP":
		return "G"
	default:
		return code
	}
}
