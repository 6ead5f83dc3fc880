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

const abreezaSource = "Abreeza"

var (
	abreezaCinemaExpr = regexp.MustCompile(`^Cinema [1-4]$`)
	abreezaPriceExpr  = regexp.MustCompile(`^[0-9]+$`)
	abreezaDateExpr   = regexp.MustCompile(`(?i)^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s[0-9]{1,2},\s20[0-9]{2}$`)
	abreezaTimeExpr   = regexp.MustCompile(`(?i)^(1[012]|[1-9]):[0-5][0-9]\s+(am|pm)$`)
)

// AbreezaScraper parses the sureseats.com schedule page for Abreeza. The
// page carries one table block per (cinema, movie) pair.
type AbreezaScraper struct {
	fetcher ports.PageFetcher
	url     string
	loc     *time.Location
	logger  *slog.Logger
	movies  []domain.MovieRecord
}

var _ scraper.Scraper = (*AbreezaScraper)(nil)

// NewAbreezaScraper wires the page fetcher and the schedule page URL.
func NewAbreezaScraper(fetcher ports.PageFetcher, url string, loc *time.Location, logger *slog.Logger) *AbreezaScraper {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AbreezaScraper{fetcher: fetcher, url: url, loc: loc, logger: logger}
}

// Name identifies the scraper inside the registry.
func (a *AbreezaScraper) Name() string {
	return "abreeza"
}

// HasMovies reports whether the last fetch collected any schedules.
func (a *AbreezaScraper) HasMovies() bool {
	return len(a.movies) > 0
}

// Movies returns the consolidated movies in first-seen order.
func (a *AbreezaScraper) Movies() []domain.MovieRecord {
	return a.movies
}

// Fetch loads the schedule page, extracts every table block, and folds the
// valid blocks into one MovieRecord per title. A violated structural
// assumption (no blocks, bad cinema label, bad anchor date) aborts the
// fetch with a ParseError; a bad rating, price, or single time cell is
// logged and skipped.
func (a *AbreezaScraper) Fetch(ctx context.Context) error {
	raw, err := a.fetcher.FetchPage(ctx, a.url)
	if err != nil {
		return fmt.Errorf("load page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return scraper.NewParseError(abreezaSource, "Failed to parse page.", err.Error())
	}

	blocks := doc.Find(`.rounded-half-nbp table[width="135"]`)
	if blocks.Length() == 0 {
		return scraper.NewParseError(abreezaSource, "Failed to extract movies!", "")
	}

	cons := scraper.NewConsolidator()
	var blockErr error
	blocks.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		block, ok, err := a.processBlock(sel)
		if err != nil {
			blockErr = err
			return false
		}
		if ok {
			cons.Add(block)
		}
		return true
	})
	if blockErr != nil {
		return blockErr
	}

	a.movies = cons.Records()
	return nil
}

func (a *AbreezaScraper) processBlock(sel *goquery.Selection) (scraper.Block, bool, error) {
	var block scraper.Block

	rawTitle := sel.Find(".SEARCH_TITLE").Text()
	if strings.TrimSpace(rawTitle) == "" {
		a.logger.Error("failed to extract a movie title, skipping block")
		return block, false, nil
	}
	title, is3D := scraper.NormalizeTitle(rawTitle)

	cinema := strings.TrimSpace(sel.Find("tr").First().Text())
	if !abreezaCinemaExpr.MatchString(cinema) {
		return block, false, scraper.NewParseError(abreezaSource, "Invalid cinema name.", cinema)
	}
	cinemaNum, _ := strconv.Atoi(strings.TrimPrefix(cinema, "Cinema "))

	rating := strings.TrimSpace(strings.Replace(sel.Find(".SEARCH_RATING").Text(), "Rating: ", "", 1))
	if !domain.ValidRating(rating) {
		if rating != "" {
			a.logger.Warn("not a valid MTRCB rating", "rating", rating)
		}
		rating = ""
	}

	price := strings.TrimSpace(strings.Replace(sel.Find(".SEARCH_PRICE").Text(), "Price: ", "", 1))
	havePrice := true
	if !abreezaPriceExpr.MatchString(price) {
		a.logger.Warn("not a valid ticket price", "price", price)
		havePrice = false
	}

	date := strings.TrimSpace(sel.Find(".SEARCH_DATE").Text())
	if !abreezaDateExpr.MatchString(date) {
		return block, false, scraper.NewParseError(abreezaSource, "Invalid screening date.", date)
	}

	var times []domain.ScreeningTime
	sel.Find(".SEARCH_SCHED").Each(func(_ int, cell *goquery.Selection) {
		text := strings.TrimSpace(cell.Text())
		if !abreezaTimeExpr.MatchString(text) {
			a.logger.Warn("not a valid time, skipping", "time", text)
			return
		}

		clock := strings.ToLower(strings.Join(strings.Fields(text), " "))
		ts, err := time.ParseInLocation("Jan 2, 2006 3:04 pm", date+" "+clock, a.loc)
		if err != nil {
			a.logger.Warn("not a valid time, skipping", "time", text)
			return
		}

		st := domain.ScreeningTime{
			Cinema: domain.CinemaNumber(cinemaNum),
			Time:   ts,
		}
		if havePrice {
			p, _ := strconv.Atoi(price)
			st.Tickets = []domain.Ticket{{Price: p}}
		}
		if is3D {
			st.Format = "3D"
		}
		times = append(times, st)
	})

	block = scraper.Block{Title: title, Rating: rating, ScreeningTimes: times}
	return block, true, nil
}
