package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"bookstore/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// MaxSearchLen bounds the search term accepted from clients.
const MaxSearchLen = 100

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Search accepts any printable term up to MaxSearchLen runes. The term is
// returned verbatim: the store keeps search text unnormalized.
func Search(s string) (string, bool) {
	if utf8.RuneCountInString(s) > MaxSearchLen || strings.ContainsRune(s, '\x00') {
		return "", false
	}
	return s, true
}

// Qty parses a requested quantity. Out-of-range values are accepted; the
// store clamps them to [0, stock].
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ID validates a simple resource identifier (product/user ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Category(s string) (domain.Category, bool) {
	c := domain.Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

func SortKey(s string) (domain.SortKey, bool) {
	k := domain.SortKey(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 40 {
		return "", false
	}
	return s, true
}

// PriceRange checks bounds are non-negative; order is normalized by the store.
func PriceRange(r domain.PriceRange) bool {
	return r[0] >= 0 && r[1] >= 0
}

// Rating checks a threshold lies within the 0 to 5 star scale.
func Rating(v float64) bool {
	return v >= 0 && v <= 5
}
