// Package locus turns a session's gene and chromosome selections into the
// single region the genome viewer displays.
package locus

import (
	"strings"
	"sync"
	"time"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

// GeneRef is a selected gene. Selections from search results carry
// coordinates; selections from the candidate table carry only the id.
type GeneRef struct {
	ID    string `json:"id"`
	Chrom string `json:"chrom,omitempty"`
	Start int64  `json:"x1,omitempty"`
	End   int64  `json:"x2,omitempty"`
}

// RefFromGene returns a reference carrying the gene's coordinates.
func RefFromGene(g genome.Gene) GeneRef {
	return GeneRef{ID: g.ID, Chrom: g.Chrom, Start: g.Start, End: g.End}
}

// HasCoordinates returns true if the reference can be resolved without a lookup.
func (r GeneRef) HasCoordinates() bool {
	return r.Chrom != "" && r.End > 0 && r.Start <= r.End
}

func (r GeneRef) gene() genome.Gene {
	return genome.Gene{ID: r.ID, Name: r.ID, Chrom: r.Chrom, Start: r.Start, End: r.End}
}

// Session holds the selections of one viewer session.
type Session struct {
	id string

	mu        sync.Mutex
	gene      *GeneRef
	chrom     string
	familyID  string
	geneFresh bool // gene selected after the last chromosome selection
	touched   time.Time
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	return &Session{id: id, touched: time.Now()}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SelectGene records a gene selection.
func (s *Session) SelectGene(ref GeneRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref.ID = strings.TrimSpace(ref.ID)
	s.gene = &ref
	s.geneFresh = true
	s.touched = time.Now()
}

// ClearGene drops the gene selection.
func (s *Session) ClearGene() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gene = nil
	s.geneFresh = false
	s.touched = time.Now()
}

// SelectChromosome records an explicit chromosome selection; empty clears it.
func (s *Session) SelectChromosome(chrom string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chrom = strings.TrimSpace(chrom)
	s.geneFresh = false
	s.touched = time.Now()
}

// SelectFamily records the family shown by family-scoped views.
func (s *Session) SelectFamily(familyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.familyID = strings.TrimSpace(familyID)
	s.touched = time.Now()
}

// State is a copy of a session's selections.
type State struct {
	ID        string   `json:"id"`
	Gene      *GeneRef `json:"gene,omitempty"`
	Chrom     string   `json:"chrom,omitempty"`
	FamilyID  string   `json:"familyId,omitempty"`
	GeneFresh bool     `json:"-"`
}

// Snapshot returns the current selections.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{ID: s.id, Chrom: s.chrom, FamilyID: s.familyID, GeneFresh: s.geneFresh}
	if s.gene != nil {
		g := *s.gene
		st.Gene = &g
	}
	return st
}

// IdleSince returns the time of the last selection.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
