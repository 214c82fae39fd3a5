package validate

import (
	"strings"
	"testing"

	"bookstore/internal/domain"
)

func TestID(t *testing.T) {
	for _, ok := range []string{"book-001", "u_42", " manga-003 "} {
		if _, got := ID(ok); !got {
			t.Fatalf("want %q accepted", ok)
		}
	}
	for _, bad := range []string{"", "../etc", "a b", "<x>", strings.Repeat("a", 65)} {
		if _, got := ID(bad); got {
			t.Fatalf("want %q rejected", bad)
		}
	}
}

func TestSearchKeepsTermVerbatim(t *testing.T) {
	s, ok := Search("  One Piece ")
	if !ok || s != "  One Piece " {
		t.Fatalf("got %q ok=%v", s, ok)
	}
	if _, ok := Search(strings.Repeat("x", MaxSearchLen+1)); ok {
		t.Fatal("overlong term accepted")
	}
	if _, ok := Search("a\x00b"); ok {
		t.Fatal("NUL accepted")
	}
}

func TestQty(t *testing.T) {
	cases := map[string]struct {
		n  int
		ok bool
	}{
		"3":    {3, true},
		" 12 ": {12, true},
		"-1":   {-1, true},
		"0":    {0, true},
		"two":  {0, false},
		"":     {0, false},
	}
	for in, want := range cases {
		n, ok := Qty(in)
		if n != want.n || ok != want.ok {
			t.Fatalf("Qty(%q): want %d,%v got %d,%v", in, want.n, want.ok, n, ok)
		}
	}
}

func TestCategoryAndSortKey(t *testing.T) {
	if c, ok := Category(" Manga "); !ok || c != domain.CategoryManga {
		t.Fatalf("got %q ok=%v", c, ok)
	}
	if _, ok := Category("vinyl"); ok {
		t.Fatal("unknown category accepted")
	}
	if k, ok := SortKey("PRICE-ASC"); !ok || k != domain.SortPriceAsc {
		t.Fatalf("got %q ok=%v", k, ok)
	}
	if _, ok := SortKey("cheapest"); ok {
		t.Fatal("unknown sort accepted")
	}
}

func TestUserFields(t *testing.T) {
	if _, ok := Email("ann@example.com"); !ok {
		t.Fatal("valid email rejected")
	}
	if _, ok := Email("ann@"); ok {
		t.Fatal("bad email accepted")
	}
	if _, ok := Name("  "); ok {
		t.Fatal("blank name accepted")
	}
	if _, ok := Name(strings.Repeat("n", 41)); ok {
		t.Fatal("long name accepted")
	}
}

func TestRanges(t *testing.T) {
	if !PriceRange(domain.PriceRange{50, 10}) {
		t.Fatal("reversed bounds are normalized later, not rejected")
	}
	if PriceRange(domain.PriceRange{-1, 10}) {
		t.Fatal("negative bound accepted")
	}
	if !Rating(0) || !Rating(5) || Rating(5.5) || Rating(-0.1) {
		t.Fatal("rating bounds wrong")
	}
}
