package songmatch

import (
	"testing"
)

func TestMatchSongNameExact(t *testing.T) {
	m := NewDefaultMatcher()

	if !m.MatchSongName("Scarlet Begonias", "scarlet begonias") {
		t.Fatal("expected case-insensitive exact match")
	}
	if !m.MatchSongName("Althea", "Althea") {
		t.Fatal("expected identical names to match")
	}
}

func TestMatchSongNameSegueSplit(t *testing.T) {
	m := NewDefaultMatcher()

	if !m.MatchSongName("Scarlet Begonias > Fire on the Mountain", "fire on the mountain") {
		t.Fatal("expected segue part to match")
	}
	if !m.MatchSongName("Scarlet Begonias -> Fire on the Mountain", "Scarlet Begonias") {
		t.Fatal("expected arrow segue spelling to match")
	}
	if !m.MatchSongName("China Cat Sunflower ~> I Know You Rider", "china cat sunflower > i know you rider") {
		t.Fatal("expected canonicalized segue names to match")
	}
}

func TestMatchSongNameAliasTable(t *testing.T) {
	m := NewDefaultMatcher()

	if !m.MatchSongName("GDTRFB", "Goin' Down the Road Feeling Bad") {
		t.Fatal("expected alias to match canonical name")
	}
	// Both directions.
	if !m.MatchSongName("Goin' Down the Road Feeling Bad", "GDTRFB") {
		t.Fatal("expected canonical name to match alias")
	}
	if !m.MatchSongName("NFA", "Not Fade Away") {
		t.Fatal("expected NFA alias to match")
	}
}

func TestMatchSongNameNoMatch(t *testing.T) {
	m := NewDefaultMatcher()

	if m.MatchSongName("Althea", "Eyes of the World") {
		t.Fatal("expected different songs not to match")
	}
	if m.MatchSongName("", "Althea") {
		t.Fatal("expected empty name not to match")
	}
}

func TestMatchSongNameRepriseAndApostrophes(t *testing.T) {
	m := NewDefaultMatcher()

	if !m.MatchSongName("Playing in the Band (Reprise)", "playing in the band") {
		t.Fatal("expected reprise suffix to be stripped")
	}
	if !m.MatchSongName("Goin’ Down the Road Feeling Bad", "Goin' Down the Road Feeling Bad") {
		t.Fatal("expected curly apostrophe to normalize")
	}
}

func TestMatchSongNameSubstring(t *testing.T) {
	m := NewDefaultMatcher()

	// Shorter side must be at least 5 chars.
	if !m.MatchSongName("Terrapin Station Part 1", "Terrapin Station") {
		t.Fatal("expected substring match for long prefix")
	}
	if m.MatchSongName("Deal", "Dealin' All Night Long") {
		t.Fatal("expected 4-char name not to substring-match")
	}
}

func TestMatchSongNameTypoTolerance(t *testing.T) {
	m := NewDefaultMatcher()

	if !m.MatchSongName("Cassidy", "Casidy") {
		t.Fatal("expected single-edit typo to match")
	}
	if m.MatchSongName("Althea", "Altheb Rose Garden") {
		t.Fatal("expected multi-edit difference not to match")
	}
}

func TestHasSegue(t *testing.T) {
	if !HasSegue("Scarlet Begonias > Fire on the Mountain") {
		t.Fatal("expected > to be detected")
	}
	if !HasSegue("Scarlet Begonias --> Fire on the Mountain") {
		t.Fatal("expected --> to be detected")
	}
	if HasSegue("Scarlet Begonias") {
		t.Fatal("expected plain name to have no segue")
	}
}
