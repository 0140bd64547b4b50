// Package browser computes what the genome viewer shows for a session:
// the display region, the ordered tracks and any placeholder message.
package browser

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/uconn-ofc/sv-browser/internal/family"
	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/locus"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

// Placeholder messages shown instead of the viewer.
const (
	MsgSelectChromosome = "Please select a chromosome to view the genome browser."
	MsgSelectFamily     = "Please select a family to view the genome browser."
	MsgSelectFamilyInfo = "Please select a family to view information."
	MsgNoFamilies       = "No families available"
	MsgStorage          = "Error loading genome browser data. Please try again."
	MsgViewError        = "The genome browser could not be displayed for this selection."
)

// NoFamilyData formats the message for a family without members.
func NoFamilyData(familyID string) string {
	return fmt.Sprintf("No data found for family %s", familyID)
}

// ChromosomeStore lists the chromosomes with annotated genes.
type ChromosomeStore interface {
	Chromosomes(ctx context.Context) ([]string, error)
}

// Families resolves family members.
type Families interface {
	GetFamilyMembers(ctx context.Context, familyID string) (family.Members, error)
}

// Browser ties the locus resolver and track assembler together.
type Browser struct {
	build     string
	store     ChromosomeStore
	families  Families
	resolver  *locus.Resolver
	assembler *track.Assembler
	logger    *zap.Logger
}

// New creates a Browser for the assembler's default genome build.
func New(store ChromosomeStore, families Families, resolver *locus.Resolver, assembler *track.Assembler) *Browser {
	return &Browser{
		build:     assembler.DefaultBuild(),
		store:     store,
		families:  families,
		resolver:  resolver,
		assembler: assembler,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for storage failures.
func (b *Browser) SetLogger(l *zap.Logger) {
	b.logger = l
}

// Build returns the genome build served by the browser.
func (b *Browser) Build() string {
	return b.build
}

// View is everything the viewer host needs to render one session.
type View struct {
	Genome string        `json:"genome"`
	Locus  string        `json:"locus,omitempty"`
	Region *genome.Locus `json:"region,omitempty"`
	// Gene is the unpadded selected gene when the locus is a gene range.
	Gene              *genome.Gene  `json:"gene,omitempty"`
	ChromosomeChanged bool          `json:"chromosomeChanged,omitempty"`
	Tracks            []track.Track `json:"tracks"`
	Message           string        `json:"message,omitempty"`
	Family            *FamilyInfo   `json:"family,omitempty"`
}

// Ready returns true if the view can be handed to the viewer widget.
func (v *View) Ready() bool {
	return v.Region != nil && len(v.Tracks) > 0
}

// View resolves the session's selections for scope. Missing selections and
// unknown families produce a message, not an error. Failures return the error
// together with a view carrying MsgStorage for storage errors and MsgViewError
// otherwise.
func (b *Browser) View(ctx context.Context, s *locus.Session, scope track.Scope) (View, error) {
	v := View{Genome: b.build, Tracks: []track.Track{}}

	if scope.IsFamily() && scope.FamilyID() == "" {
		v.Message = MsgSelectFamily
		return v, nil
	}

	res, err := b.resolver.Resolve(ctx, s, scope)
	if errors.Is(err, locus.ErrUnresolved) {
		v.Message = MsgSelectChromosome
		return v, nil
	}
	if err != nil {
		return b.failed(v, "resolve locus", err)
	}
	v.Locus = res.Locus.String()
	v.Region = &res.Locus
	v.Gene = res.Gene
	v.ChromosomeChanged = res.ChromosomeChanged

	tracks, err := b.assembler.AssembleTracks(ctx, res.Locus.Chrom, b.build, scope)
	if err != nil {
		return b.failed(v, "assemble tracks", err)
	}
	v.Tracks = tracks

	if scope.IsFamily() {
		info, err := b.FamilyInfo(ctx, scope.FamilyID())
		if err != nil {
			return b.failed(v, "family info", err)
		}
		v.Family = &info
		v.Message = info.Message
	}
	return v, nil
}

func (b *Browser) failed(v View, op string, err error) (View, error) {
	b.logger.Error("view failed", zap.String("op", op), zap.Error(err))
	v.Message = MsgViewError
	if refdata.IsStorageError(err) {
		v.Message = MsgStorage
	}
	v.Tracks = []track.Track{}
	return v, fmt.Errorf("%s: %w", op, err)
}

// FamilyInfo summarizes a family for the information panel.
type FamilyInfo struct {
	ID       string           `json:"id"`
	Members  []family.Summary `json:"members"`
	Parents  int              `json:"parents"`
	Children int              `json:"children"`
	Message  string           `json:"message,omitempty"`
}

// FamilyInfo describes a family's members. An empty id or an unknown family
// yields a message instead of members.
func (b *Browser) FamilyInfo(ctx context.Context, familyID string) (FamilyInfo, error) {
	info := FamilyInfo{ID: familyID, Members: []family.Summary{}}
	if familyID == "" {
		info.Message = MsgSelectFamilyInfo
		return info, nil
	}

	m, err := b.families.GetFamilyMembers(ctx, familyID)
	if errors.Is(err, refdata.ErrNotFound) {
		info.Message = NoFamilyData(familyID)
		return info, nil
	}
	if err != nil {
		return info, err
	}
	info.Members = family.Describe(m)
	info.Parents = len(m.Parents)
	info.Children = len(m.Children)
	return info, nil
}
