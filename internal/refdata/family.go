package refdata

import (
	"context"
	"database/sql"
)

// Member is one participant row of the phenotype table.
type Member struct {
	FamilyID      string `json:"familyId"`
	ParticipantID string `json:"participantId,omitempty"`
	BioID         string `json:"bioId,omitempty"`
	SampleID      string `json:"sampleId"` // BAM identifier used to select SV calls
	Phenotype     string `json:"phenotype,omitempty"`
	Child         bool   `json:"child"`
	Proband       bool   `json:"proband"`
	Affected      bool   `json:"affected"`
	Sex           string `json:"sex"` // "M" or "F"
	Race          string `json:"race,omitempty"`
}

// IsMale returns true if the member is recorded as male.
func (m *Member) IsMale() bool {
	return m.Sex == "M"
}

// SexLabel returns "Male" or "Female".
func (m *Member) SexLabel() string {
	if m.IsMale() {
		return "Male"
	}
	return "Female"
}

// FamilyIDs returns the distinct family identifiers in ascending order.
func (s *Store) FamilyIDs(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, "family ids",
		`SELECT DISTINCT family_id FROM phenotype WHERE family_id IS NOT NULL ORDER BY family_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("family ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("family ids", err)
	}
	return ids, nil
}

// FamilyMembers returns the members of a family, parents first, then by sex.
// An unknown family yields an empty slice.
func (s *Store) FamilyMembers(ctx context.Context, familyID string) ([]Member, error) {
	rows, err := s.query(ctx, "family members",
		`SELECT family_id, part_id, bio_id, bam_id, pheno, child, proband, affected, gender, race
		FROM phenotype
		WHERE family_id = ?
		ORDER BY child, gender, bam_id`, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var (
			m                        Member
			partID, bioID, bamID     sql.NullString
			pheno, gender, race      sql.NullString
			child, proband, affected sql.NullInt64
		)
		if err := rows.Scan(&m.FamilyID, &partID, &bioID, &bamID, &pheno,
			&child, &proband, &affected, &gender, &race); err != nil {
			return nil, storageErr("family members", err)
		}
		m.ParticipantID = partID.String
		m.BioID = bioID.String
		m.SampleID = bamID.String
		m.Phenotype = pheno.String
		m.Child = child.Int64 == 1
		m.Proband = proband.Int64 == 1
		m.Affected = affected.Int64 == 1
		m.Sex = gender.String
		m.Race = race.String
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("family members", err)
	}
	return members, nil
}
