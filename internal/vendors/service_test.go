package vendors

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryVendorRepo struct {
	byGSTIN map[string]Vendor
	all     []Vendor
	nextID  int64
}

func newMemoryVendorRepo() *memoryVendorRepo {
	return &memoryVendorRepo{byGSTIN: make(map[string]Vendor), nextID: 1}
}

func (m *memoryVendorRepo) Create(_ context.Context, input CreateVendorInput) (Vendor, error) {
	v := Vendor{
		ID:        m.nextID,
		Name:      input.Name,
		GSTIN:     input.GSTIN,
		Rating:    input.Rating,
		RiskScore: input.RiskScore,
		CreatedAt: time.Now().UTC(),
	}
	m.nextID++
	m.all = append(m.all, v)
	if v.GSTIN != nil {
		m.byGSTIN[*v.GSTIN] = v
	}
	return v, nil
}

func (m *memoryVendorRepo) GetByGSTIN(_ context.Context, gstin string) (Vendor, error) {
	v, ok := m.byGSTIN[gstin]
	if !ok {
		return Vendor{}, ErrVendorNotFound
	}
	return v, nil
}

func (m *memoryVendorRepo) UpsertByGSTIN(ctx context.Context, name, gstin string) (Vendor, error) {
	if v, ok := m.byGSTIN[gstin]; ok {
		v.Name = name
		m.byGSTIN[gstin] = v
		for i := range m.all {
			if m.all[i].ID == v.ID {
				m.all[i] = v
			}
		}
		return v, nil
	}
	return m.Create(ctx, CreateVendorInput{Name: name, GSTIN: &gstin})
}

func (m *memoryVendorRepo) List(_ context.Context) ([]Vendor, error) {
	out := append([]Vendor(nil), m.all...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func TestCreateValidatesGSTIN(t *testing.T) {
	svc := NewService(newMemoryVendorRepo())

	bad := "not-a-gstin"
	_, err := svc.Create(context.Background(), CreateVendorInput{Name: "Acme", GSTIN: &bad})
	require.ErrorIs(t, err, ErrInvalidGSTIN)

	lower := "29abcde1234f1z5"
	v, err := svc.Create(context.Background(), CreateVendorInput{Name: "Acme", GSTIN: &lower})
	require.NoError(t, err)
	require.Equal(t, "29ABCDE1234F1Z5", *v.GSTIN)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryVendorRepo())

	_, err := svc.Create(context.Background(), CreateVendorInput{Name: "   "})
	require.ErrorIs(t, err, ErrMissingName)
}

func TestResolveUpserts(t *testing.T) {
	repo := newMemoryVendorRepo()
	svc := NewService(repo)

	v, err := svc.Resolve(context.Background(), "Acme Supplies", "29ABCDE1234F1Z5")
	require.NoError(t, err)
	require.NotNil(t, v)

	again, err := svc.Resolve(context.Background(), "Acme Supplies Pvt Ltd", "29abcde1234f1z5")
	require.NoError(t, err)
	require.Equal(t, v.ID, again.ID)
	require.Equal(t, "Acme Supplies Pvt Ltd", again.Name)
	require.Len(t, repo.all, 1)
}

func TestResolveWithoutGSTIN(t *testing.T) {
	svc := NewService(newMemoryVendorRepo())

	v, err := svc.Resolve(context.Background(), "Acme Supplies", "")
	require.NoError(t, err)
	require.Nil(t, v)
}
