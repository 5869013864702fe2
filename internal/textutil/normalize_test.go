package textutil

import (
	"reflect"
	"testing"
)

func TestNormalizeQueryCollapsesWhitespaceAndCase(t *testing.T) {
	got := NormalizeQuery("  Napoleon   Moscow\t1812  ")
	if got != "napoleon moscow 1812" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestTokenizeKeepsNumericAnchors(t *testing.T) {
	got := Tokenize("Napoleon in 1812, at war")
	want := []string{"napoleon", "1812", "war"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokenize mismatch: got %v want %v", got, want)
	}
}

func TestWordsTrimsPunctuation(t *testing.T) {
	got := Words("Moscow, 1812! (ruins)")
	want := []string{"Moscow", "1812", "ruins"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("words mismatch: got %v want %v", got, want)
	}
}

func TestIsYearToken(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1812", true},
		{"2023", true},
		{"181", false},
		{"18121", false},
		{"year", false},
	}
	for _, tc := range cases {
		if got := IsYearToken(tc.in); got != tc.want {
			t.Fatalf("IsYearToken(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Olympic Games 1912!"); got != "olympic_games_1912" {
		t.Fatalf("unexpected token: %q", got)
	}
	if got := SanitizeToken("  "); got != "unknown" {
		t.Fatalf("expected fallback token, got %q", got)
	}
}

func TestCosineSimilarityOrdering(t *testing.T) {
	base := NewFingerprint("napoleon retreat from moscow in winter 1812")
	near := NewFingerprint("napoleon moscow 1812 retreat")
	far := NewFingerprint("zimbabwe free energy breakthrough")
	if CosineSimilarity(base, near) <= CosineSimilarity(base, far) {
		t.Fatal("expected related text to score higher than unrelated text")
	}
	if CosineSimilarity(nil, base) != 0 {
		t.Fatal("nil fingerprint must score 0")
	}
}
