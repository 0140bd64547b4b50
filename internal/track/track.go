// Package track assembles the ordered annotation tracks shown by the genome viewer.
package track

import (
	"fmt"
	"strings"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

// Kind identifies where a track's features come from.
type Kind string

// Track kinds.
const (
	KindBackground Kind = "background"
	KindGenes      Kind = "genes"
	KindRole       Kind = "role"
	KindIndividual Kind = "individual"
)

// Display defaults shared by every track.
const (
	SourceAnnotation = "annotation"
	FormatBED        = "bed"
	DisplayExpanded  = "EXPANDED"

	aggregateHeight  = 100
	individualHeight = 50
)

// Track colors.
const (
	ColorBackground  = "#669900"
	ColorFemale      = "#CC3366"
	ColorMale        = "#3366CC"
	ColorChild       = "#02254B"
	ColorChildFemale = "#9ECEEB"
)

// Feature is one interval drawn on a track.
type Feature struct {
	Chrom       string `json:"chr"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Strand      string `json:"strand,omitempty"`
	Gene        string `json:"gene,omitempty"` // longest overlapping gene
	Description string `json:"description,omitempty"`
}

// Track is a named overlay with its features inlined.
type Track struct {
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	SourceType  string    `json:"sourceType"`
	Format      string    `json:"format"`
	DisplayMode string    `json:"displayMode"`
	Color       string    `json:"color,omitempty"`
	Height      int       `json:"height,omitempty"`
	SampleID    string    `json:"sampleId,omitempty"`
	Features    []Feature `json:"features"`
}

// Within returns copies of tracks keeping only the features that overlap a
// ranged locus. Tracks are returned unchanged for a locus without a range.
func Within(tracks []Track, l genome.Locus) []Track {
	if !l.HasRange {
		return tracks
	}
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		features := []Feature{}
		for _, f := range t.Features {
			if genome.SameChrom(f.Chrom, l.Chrom) && f.Start <= l.End && f.End >= l.Start {
				features = append(features, f)
			}
		}
		t.Features = features
		out[i] = t
	}
	return out
}

func newTrack(name string, kind Kind, color string, height int) Track {
	return Track{
		Name:        name,
		Kind:        kind,
		SourceType:  SourceAnnotation,
		Format:      FormatBED,
		DisplayMode: DisplayExpanded,
		Color:       color,
		Height:      height,
		Features:    []Feature{},
	}
}

// Scope selects which cohort tracks accompany the reference tracks.
type Scope struct {
	familyID string
	family   bool
}

// Population returns the cohort-wide scope.
func Population() Scope {
	return Scope{}
}

// FamilyScope returns the scope of a single family.
func FamilyScope(familyID string) Scope {
	return Scope{familyID: familyID, family: true}
}

// IsFamily returns true for family scopes.
func (s Scope) IsFamily() bool {
	return s.family
}

// FamilyID returns the family of a family scope.
func (s Scope) FamilyID() string {
	return s.familyID
}

func (s Scope) String() string {
	if s.family {
		return "family:" + s.familyID
	}
	return "population"
}

// ParseScope parses "population" or "family". A family scope needs a family id.
func ParseScope(name, familyID string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "population":
		return Population(), nil
	case "family":
		familyID = strings.TrimSpace(familyID)
		if familyID == "" {
			return Scope{}, fmt.Errorf("family scope requires a family id")
		}
		return FamilyScope(familyID), nil
	}
	return Scope{}, fmt.Errorf("unknown scope %q (want population or family)", name)
}
