// Package family resolves family identifiers into their parents and children.
package family

import (
	"context"
	"fmt"
	"strings"

	"github.com/uconn-ofc/sv-browser/internal/refdata"
)

// MemberStore is the subset of the reference store used to resolve families.
type MemberStore interface {
	FamilyIDs(ctx context.Context) ([]string, error)
	FamilyMembers(ctx context.Context, familyID string) ([]refdata.Member, error)
}

// Members holds the resolved members of one family in stored order.
type Members struct {
	FamilyID string           `json:"familyId"`
	Parents  []refdata.Member `json:"parents"`
	Children []refdata.Member `json:"children"`
}

// Len returns the total number of members.
func (m Members) Len() int {
	return len(m.Parents) + len(m.Children)
}

// All returns parents followed by children.
func (m Members) All() []refdata.Member {
	all := make([]refdata.Member, 0, m.Len())
	all = append(all, m.Parents...)
	return append(all, m.Children...)
}

// Resolver lists families and resolves their members.
type Resolver struct {
	store MemberStore
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store MemberStore) *Resolver {
	return &Resolver{store: store}
}

// ListFamilyIDs returns every family identifier in ascending order.
// An empty cohort returns an empty, non-nil slice.
func (r *Resolver) ListFamilyIDs(ctx context.Context) ([]string, error) {
	ids, err := r.store.FamilyIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// GetFamilyMembers returns the parents and children of a family.
// A family without members returns an error wrapping refdata.ErrNotFound.
func (r *Resolver) GetFamilyMembers(ctx context.Context, familyID string) (Members, error) {
	familyID = strings.TrimSpace(familyID)
	rows, err := r.store.FamilyMembers(ctx, familyID)
	if err != nil {
		return Members{}, fmt.Errorf("family %s members: %w", familyID, err)
	}
	if len(rows) == 0 {
		return Members{}, fmt.Errorf("family %s: %w", familyID, refdata.ErrNotFound)
	}

	m := Members{
		FamilyID: familyID,
		Parents:  []refdata.Member{},
		Children: []refdata.Member{},
	}
	for _, row := range rows {
		if row.Child {
			m.Children = append(m.Children, row)
		} else {
			m.Parents = append(m.Parents, row)
		}
	}
	return m, nil
}

// ParentLabel names the i-th parent (zero based) for display, e.g. "Parent 1 (Female)".
func ParentLabel(i int, m refdata.Member) string {
	return fmt.Sprintf("Parent %d (%s)", i+1, m.SexLabel())
}

// ChildLabel names the i-th child (zero based), e.g. "Child 1 (Male - Proband - Affected)".
func ChildLabel(i int, m refdata.Member) string {
	return fmt.Sprintf("Child %d (%s)", i+1, strings.Join(childStatus(m), " - "))
}

func childStatus(m refdata.Member) []string {
	parts := []string{m.SexLabel()}
	if m.Proband {
		parts = append(parts, "Proband")
	}
	if m.Affected {
		parts = append(parts, "Affected")
	}
	return parts
}

// Summary describes one member in the family information panel.
type Summary struct {
	Label     string `json:"label"`
	SampleID  string `json:"sampleId"`
	Phenotype string `json:"phenotype,omitempty"`
	Race      string `json:"race,omitempty"`
}

// Describe returns display summaries for every member, parents first.
func Describe(m Members) []Summary {
	out := make([]Summary, 0, m.Len())
	for i, p := range m.Parents {
		out = append(out, Summary{Label: ParentLabel(i, p), SampleID: p.SampleID, Phenotype: p.Phenotype, Race: p.Race})
	}
	for i, c := range m.Children {
		out = append(out, Summary{Label: ChildLabel(i, c), SampleID: c.SampleID, Phenotype: c.Phenotype, Race: c.Race})
	}
	return out
}
