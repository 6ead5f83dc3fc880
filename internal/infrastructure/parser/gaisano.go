package parser

import (
	"context"
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

const gaisanoSource = "Gmall"

var (
	gaisanoHeaderExpr = regexp.MustCompile(`(?i)SKED FOR (.+)\.\s(?:ALL\s)?MOVIES`)
	gaisanoDayExpr    = regexp.MustCompile(`\([A-Z]+\)`)
	gaisanoDateExpr   = regexp.MustCompile(`^(?:JANUARY|FEBRUARY|MARCH|APRIL|MAY|JUNE|JULY|AUGUST|SEPTEMBER|OCTOBER|NOVEMBER|DECEMBER)\s[0-9]{1,2},?\s20[0-9]{2}$`)
	gaisanoCinemaExpr = regexp.MustCompile(`^CINEMA [1-9]$`)
	gaisanoRatingExpr = regexp.MustCompile(`^(PG-13|PG13|G|PG|R13|R16|R18)\s?-\s?`)
	gaisanoTimesExpr  = regexp.MustCompile(`(?:[0-9]{1,2}:[0-9]{2}\|?)+`)
	gaisanoClockExpr  = regexp.MustCompile(`[0-9]{1,2}:[0-9]{2}`)
	gaisanoPricesExpr = regexp.MustCompile(`(?:P[0-9]{3}\|?)+`)
)

// gaisanoBranches are the mall branch markers that may appear in a post.
var gaisanoBranches = []string{"DAVAO", "TORIL", "TAGUM"}

// Hours treated as morning when a post omits AM/PM markers. The cinemas
// never open before 10:00, so 10 and 11 are the only ambiguous hours that
// resolve to AM; a hypothetical 10pm screening would be mis-resolved.
var gaisanoMorningHours = map[int]bool{10: true, 11: true}

// GaisanoScraper parses the weekly schedule post from the GMall Cinemas
// Facebook feed. One post covers every branch; each scraper instance keeps
// only the blocks for its own branch marker.
type GaisanoScraper struct {
	name   string
	feed   ports.FeedSource
	branch string
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
	movies []domain.MovieRecord
}

var _ scraper.Scraper = (*GaisanoScraper)(nil)

// NewGaisanoScraper wires the feed source and the branch marker
// ("DAVAO", "TORIL", or "TAGUM") this instance collects.
func NewGaisanoScraper(name string, feed ports.FeedSource, branch string, loc *time.Location, logger *slog.Logger) *GaisanoScraper {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GaisanoScraper{
		name:   name,
		feed:   feed,
		branch: branch,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Name identifies the scraper inside the registry.
func (g *GaisanoScraper) Name() string {
	return g.name
}

// HasMovies reports whether the last fetch collected any schedules.
func (g *GaisanoScraper) HasMovies() bool {
	return len(g.movies) > 0
}

// Movies returns the consolidated movies in first-seen order.
func (g *GaisanoScraper) Movies() []domain.MovieRecord {
	return g.movies
}

// Fetch locates the most recent schedule post, scans its lines into raw
// blocks, and expands every block across the date range announced in the
// post header. The header range and its dates are structural anchors;
// unrecognized lines and unknown rating codes are logged and skipped.
func (g *GaisanoScraper) Fetch(ctx context.Context) error {
	messages, err := g.feed.RecentMessages(ctx)
	if err != nil {
		return fmt.Errorf("load feed: %w", err)
	}

	post := ""
	for _, m := range messages {
		if strings.HasPrefix(m, "SKED FOR") {
			post = m
			break
		}
	}
	if post == "" {
		return scraper.NewParseError(gaisanoSource, "Failed to find schedule post.", "")
	}

	lines := strings.Split(post, "\n")
	dates, err := g.extractDates(lines[0])
	if err != nil {
		return err
	}

	// The header and its separator line are done with; scan the rest.
	sc := &gaisanoLineScanner{logger: g.logger}
	if len(lines) > 2 {
		for _, line := range lines[2:] {
			sc.process(line)
		}
	}
	sc.flush()

	cons := scraper.NewConsolidator()
	for _, group := range sc.groups {
		if group.branch != g.branch {
			continue
		}
		cons.Add(g.buildBlock(group, dates))
	}

	g.movies = cons.Records()
	return nil
}

// extractDates parses the post header ("SKED FOR JANUARY 5 (FRI) - JANUARY
// 6 (SAT). ALL MOVIES ...") into the inclusive list of screening dates.
// The source lists one weekly schedule that repeats daily across the window.
func (g *GaisanoScraper) extractDates(header string) ([]time.Time, error) {
	m := gaisanoHeaderExpr.FindStringSubmatch(header)
	if m == nil {
		return nil, scraper.NewParseError(gaisanoSource, "Failed to extract screening dates.", header)
	}

	// Day-name parentheticals stand in for the year in the post.
	year := strconv.Itoa(g.now().Year())
	rangeText := gaisanoDayExpr.ReplaceAllString(m[1], year)

	parts := strings.Split(rangeText, " - ")
	if len(parts) != 2 {
		return nil, scraper.NewParseError(gaisanoSource, "Unexpected date range.", rangeText)
	}

	var bounds []time.Time
	for _, part := range parts {
		part = strings.TrimSpace(strings.Join(strings.Fields(part), " "))
		if !gaisanoDateExpr.MatchString(part) {
			return nil, scraper.NewParseError(gaisanoSource, "Invalid date.", part)
		}
		d, err := parseLongDate(part, g.loc)
		if err != nil {
			return nil, scraper.NewParseError(gaisanoSource, "Invalid date.", part)
		}
		bounds = append(bounds, d)
	}

	return daysBetween(bounds[0], bounds[1]), nil
}

func (g *GaisanoScraper) buildBlock(group gaisanoGroup, dates []time.Time) scraper.Block {
	tickets := make([]domain.Ticket, 0, len(group.prices))
	for _, p := range group.prices {
		tickets = append(tickets, domain.Ticket{Price: p})
	}
	if len(tickets) == 2 {
		if tickets[0].Price < tickets[1].Price {
			tickets[0].Name = "Lower Deck"
			tickets[1].Name = "Upper Deck"
		} else {
			tickets[0].Name = "Upper Deck"
			tickets[1].Name = "Lower Deck"
		}
	}

	var times []domain.ScreeningTime
	for _, clock := range group.times {
		for _, date := range dates {
			ts, err := time.ParseInLocation("2006-01-02 3:04 PM", date.Format("2006-01-02")+" "+clock, g.loc)
			if err != nil {
				g.logger.Warn("not a valid time, skipping", "time", clock)
				continue
			}

			st := domain.ScreeningTime{
				Cinema:  domain.CinemaNumber(group.cinema),
				Time:    ts,
				Tickets: tickets,
			}
			if group.is3D {
				st.Format = "3D"
			}
			times = append(times, st)
		}
	}

	return scraper.Block{Title: group.title, Rating: group.rating, ScreeningTimes: times}
}

// gaisanoGroup is one raw block scanned from the post: a movie in one
// cinema with its times and prices, before date expansion.
type gaisanoGroup struct {
	branch string
	cinema int
	title  string
	is3D   bool
	rating string
	times  []string
	prices []int
}

type gaisanoScanState int

const (
	// gaisanoScan expects a branch marker, cinema header, rating, or times.
	gaisanoScan gaisanoScanState = iota
	// gaisanoTitle expects the movie title following a cinema header.
	gaisanoTitle
	// gaisanoPrices expects the optional prices line following the times.
	gaisanoPrices
	// gaisanoNextTitle expects either a new movie title for the current
	// cinema or any regular line, right after a block was emitted.
	gaisanoNextTitle
)

// gaisanoLineScanner is the state machine that walks the post line by
// line. Branch and cinema survive across movies; the per-movie fields are
// reset every time a block is emitted.
type gaisanoLineScanner struct {
	logger *slog.Logger
	state  gaisanoScanState

	branch string
	cinema int
	title  string
	is3D   bool
	rating string
	times  []string
	prices []int

	groups []gaisanoGroup
}

func (s *gaisanoLineScanner) process(raw string) {
	line := strings.TrimSpace(raw)

	switch s.state {
	case gaisanoTitle:
		if line == "" {
			return
		}
		s.title, s.is3D = scraper.NormalizeTitle(line)
		s.state = gaisanoScan

	case gaisanoPrices:
		if m := gaisanoPricesExpr.FindString(line); m != "" {
			s.prices = parseGaisanoPrices(m)
			s.emit()
			s.state = gaisanoNextTitle
			return
		}
		// No prices for this block; emit it and rescan the line normally.
		s.emit()
		s.state = gaisanoScan
		s.process(line)

	case gaisanoNextTitle:
		if line == "" {
			return
		}
		if s.isMarker(line) {
			s.state = gaisanoScan
			s.process(line)
			return
		}
		// A bare line right after a block is the next movie playing in the
		// same cinema.
		s.title, s.is3D = scraper.NormalizeTitle(line)
		s.state = gaisanoScan

	default:
		s.scan(line)
	}
}

func (s *gaisanoLineScanner) scan(line string) {
	if line == "" {
		return
	}

	for _, branch := range gaisanoBranches {
		if line == branch {
			s.branch = branch
			return
		}
	}

	if gaisanoCinemaExpr.MatchString(line) {
		s.cinema, _ = strconv.Atoi(strings.TrimPrefix(line, "CINEMA "))
		s.state = gaisanoTitle
		return
	}

	if m := gaisanoRatingExpr.FindStringSubmatch(line); m != nil {
		s.rating = normalizeGaisanoRating(m[1], s.logger)
		return
	}

	if gaisanoTimesExpr.MatchString(line) {
		s.times = parseGaisanoTimes(line)
		s.state = gaisanoPrices
		return
	}

	s.logger.Warn("unrecognized line, skipping", "line", line)
}

// isMarker reports whether the line is handled by one of the scan rules
// rather than being free text.
func (s *gaisanoLineScanner) isMarker(line string) bool {
	for _, branch := range gaisanoBranches {
		if line == branch {
			return true
		}
	}
	return gaisanoCinemaExpr.MatchString(line) ||
		gaisanoRatingExpr.MatchString(line) ||
		gaisanoTimesExpr.MatchString(line)
}

// emit closes the current movie group and resets the per-movie state.
// Posts occasionally forget the leading branch header; those blocks belong
// to the main DAVAO branch.
func (s *gaisanoLineScanner) emit() {
	if s.title == "" || len(s.times) == 0 {
		return
	}
	if s.branch == "" {
		s.branch = "DAVAO"
	}

	s.groups = append(s.groups, gaisanoGroup{
		branch: s.branch,
		cinema: s.cinema,
		title:  s.title,
		is3D:   s.is3D,
		rating: s.rating,
		times:  s.times,
		prices: s.prices,
	})

	s.title = ""
	s.is3D = false
	s.rating = ""
	s.times = nil
	s.prices = nil
}

// flush emits a trailing block when the post ends right after a times line.
func (s *gaisanoLineScanner) flush() {
	if s.state == gaisanoPrices {
		s.emit()
		s.state = gaisanoScan
	}
}

// parseGaisanoTimes extracts every H:MM token and infers AM/PM: the post
// never marks meridiems, so the known morning hours become AM and
// everything else PM.
func parseGaisanoTimes(line string) []string {
	var times []string
	for _, clock := range gaisanoClockExpr.FindAllString(line, -1) {
		hour, _ := strconv.Atoi(strings.SplitN(clock, ":", 2)[0])
		if gaisanoMorningHours[hour] {
			times = append(times, clock+" AM")
		} else {
			times = append(times, clock+" PM")
		}
	}
	return times
}

// parseGaisanoPrices splits a "P180|P250" line into integer prices.
func parseGaisanoPrices(line string) []int {
	var prices []int
	for _, part := range strings.Split(strings.ReplaceAll(line, "P", ""), "|") {
		p, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		prices = append(prices, p)
	}
	return prices
}

// normalizeGaisanoRating maps the post's rating codes onto the official
// MTRCB set. Unknown codes are logged and dropped.
func normalizeGaisanoRating(code string, logger *slog.Logger) string {
	switch code {
	case "G":
		return "G"
	case "PG13", "PG-13":
		return "PG"
	case "R13":
		return "R-13"
	case "R16":
		return "R-16"
	case "R18":
		return "R-18"
	default:
		logger.Error("ignoring unknown MTRCB rating", "rating", code)
		return ""
	}
}
