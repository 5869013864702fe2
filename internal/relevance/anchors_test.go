package relevance

import (
	"slices"
	"testing"
)

func TestExtractAnchorsFindsProperNounsAndYears(t *testing.T) {
	anchors := ExtractAnchors(
		"Napoleon waited in ruined Moscow in 1812.",
		[]string{"napoleon", "moscow", "1812", "ruins", "documents"},
	)
	for _, want := range []string{"napoleon", "moscow", "1812"} {
		if !slices.Contains(anchors.Strong, want) {
			t.Fatalf("expected strong anchor %q, got %v", want, anchors.Strong)
		}
	}
	for _, want := range []string{"ruins", "documents", "ruined"} {
		if !slices.Contains(anchors.Weak, want) {
			t.Fatalf("expected weak anchor %q, got %v", want, anchors.Weak)
		}
	}
	if slices.Contains(anchors.Weak, "napoleon") {
		t.Fatal("strong anchors must not repeat in the weak set")
	}
}

func TestExtractAnchorsSentenceLeadingNeedsKeywordConfirmation(t *testing.T) {
	anchors := ExtractAnchors("The army crossed the Berezina River. Winter killed thousands.", nil)
	if slices.Contains(anchors.Strong, "the") || slices.Contains(anchors.Strong, "winter") {
		t.Fatalf("sentence-leading capitalization alone must not be strong: %v", anchors.Strong)
	}
	for _, want := range []string{"berezina", "river"} {
		if !slices.Contains(anchors.Strong, want) {
			t.Fatalf("expected strong anchor %q, got %v", want, anchors.Strong)
		}
	}
}

func TestExtractAnchorsYearKeywordIsStrong(t *testing.T) {
	anchors := ExtractAnchors("soldiers marching through deep snow", []string{"1941", "snow"})
	if !slices.Contains(anchors.Strong, "1941") {
		t.Fatalf("year keyword must be strong, got %v", anchors.Strong)
	}
	if !slices.Contains(anchors.Weak, "snow") {
		t.Fatalf("plain keyword must be weak, got %v", anchors.Weak)
	}
}

func TestExtractAnchorsEmptyInput(t *testing.T) {
	anchors := ExtractAnchors("", nil)
	if !anchors.Empty() {
		t.Fatalf("expected empty anchor set, got %+v", anchors)
	}
}
