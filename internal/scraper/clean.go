package scraper

import (
	"regexp"
	"strings"
)

var (
	tagExpr        = regexp.MustCompile(`<[^>]*>`)
	cinemaNameExpr = regexp.MustCompile(`Cinema\s[0-9]`)
	leading3DExpr  = regexp.MustCompile(`^\(3d\)\s*`)
	trailing3DExpr = regexp.MustCompile(`\s*\(?3d\)?$`)
)

// CleanMovieTitle strips markup tags and surrounding whitespace. It does
// not lower-case; NormalizeTitle handles the full canonical order.
func CleanMovieTitle(raw string) string {
	return strings.TrimSpace(tagExpr.ReplaceAllString(raw, ""))
}

// CleanCinemaName extracts a "Cinema <digit>" substring from a raw cinema
// label, or returns "Unknown Cinema" when no such pattern is present.
func CleanCinemaName(raw string) string {
	if m := cinemaNameExpr.FindString(raw); m != "" {
		return m
	}
	return "Unknown Cinema"
}

// NormalizeTitle converts a raw title into its canonical stored form:
// markup stripped, whitespace trimmed, lower-cased, with any leading or
// trailing 3D marker removed. It reports whether a 3D marker was present;
// the marker becomes a format on each screening time instead of part of
// the title. The sources disagreed on the order of these steps; clean then
// lower-case then strip is applied uniformly here.
func NormalizeTitle(raw string) (string, bool) {
	title := strings.ToLower(CleanMovieTitle(raw))

	is3D := false
	if leading3DExpr.MatchString(title) {
		is3D = true
		title = leading3DExpr.ReplaceAllString(title, "")
	}
	if trailing3DExpr.MatchString(title) {
		is3D = true
		title = trailing3DExpr.ReplaceAllString(title, "")
	}

	return strings.TrimSpace(title), is3D
}
