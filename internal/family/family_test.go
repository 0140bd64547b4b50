package family

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uconn-ofc/sv-browser/internal/refdata"
)

func openDemo(t *testing.T) *refdata.Store {
	t.Helper()
	s, err := refdata.Open(refdata.DriverSQLite, "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Load(context.Background(), refdata.DemoDataset()))
	return s
}

func TestListFamilyIDs(t *testing.T) {
	r := NewResolver(openDemo(t))

	ids, err := r.ListFamilyIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"F001", "F002"}, ids)
}

func TestListFamilyIDsEmpty(t *testing.T) {
	r := NewResolver(stubStore{})

	ids, err := r.ListFamilyIDs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestGetFamilyMembersTrio(t *testing.T) {
	r := NewResolver(openDemo(t))

	m, err := r.GetFamilyMembers(context.Background(), "F001")
	require.NoError(t, err)
	assert.Equal(t, "F001", m.FamilyID)
	require.Len(t, m.Parents, 2)
	require.Len(t, m.Children, 1)
	assert.Equal(t, 3, m.Len())

	child := m.Children[0]
	assert.Equal(t, "M", child.Sex)
	assert.True(t, child.Proband)
	assert.True(t, child.Affected)

	all := m.All()
	require.Len(t, all, 3)
	assert.False(t, all[0].Child)
	assert.False(t, all[1].Child)
	assert.True(t, all[2].Child)
}

func TestGetFamilyMembersNotFound(t *testing.T) {
	r := NewResolver(openDemo(t))

	_, err := r.GetFamilyMembers(context.Background(), "F999")
	assert.ErrorIs(t, err, refdata.ErrNotFound)
	assert.Contains(t, err.Error(), "F999")
}

func TestGetFamilyMembersStorageError(t *testing.T) {
	storeErr := &refdata.StorageError{Op: "family members", Err: errors.New("locked")}
	r := NewResolver(stubStore{err: storeErr})

	_, err := r.GetFamilyMembers(context.Background(), "F001")
	assert.True(t, refdata.IsStorageError(err))
	assert.NotErrorIs(t, err, refdata.ErrNotFound)

	_, err = r.ListFamilyIDs(context.Background())
	assert.True(t, refdata.IsStorageError(err))
}

func TestLabels(t *testing.T) {
	father := refdata.Member{Sex: "M"}
	mother := refdata.Member{Sex: "F"}
	assert.Equal(t, "Parent 1 (Female)", ParentLabel(0, mother))
	assert.Equal(t, "Parent 2 (Male)", ParentLabel(1, father))

	tests := []struct {
		member refdata.Member
		want   string
	}{
		{refdata.Member{Sex: "M", Child: true, Proband: true, Affected: true}, "Child 1 (Male - Proband - Affected)"},
		{refdata.Member{Sex: "F", Child: true, Affected: true}, "Child 1 (Female - Affected)"},
		{refdata.Member{Sex: "M", Child: true}, "Child 1 (Male)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChildLabel(0, tt.member))
	}
}

func TestDescribe(t *testing.T) {
	r := NewResolver(openDemo(t))
	m, err := r.GetFamilyMembers(context.Background(), "F002")
	require.NoError(t, err)

	got := Describe(m)
	require.Len(t, got, 4)
	assert.Equal(t, "Parent 1 (Female)", got[0].Label)
	assert.Equal(t, "Parent 2 (Male)", got[1].Label)
	assert.Equal(t, "Child 1 (Female - Proband - Affected)", got[2].Label)
	assert.Equal(t, "Child 2 (Male)", got[3].Label)
	assert.Equal(t, "F002_S1", got[3].SampleID)
}

type stubStore struct {
	ids     []string
	members []refdata.Member
	err     error
}

func (s stubStore) FamilyIDs(context.Context) ([]string, error) {
	return s.ids, s.err
}

func (s stubStore) FamilyMembers(context.Context, string) ([]refdata.Member, error) {
	return s.members, s.err
}
