package shopping

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		source time.Time
		want   bool
	}{
		{"yesterday", now.AddDate(0, 0, -1), true},
		{"last second of yesterday", time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC), true},
		{"earlier today", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), false},
		{"tomorrow", now.AddDate(0, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExpired(tt.source, now))
		})
	}
}

func TestExpired_KeepsUnknownSources(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	owner := uuid.New()
	past, future, gone := uuid.New(), uuid.New(), uuid.New()

	stale, _ := NewItem(owner, "lait", nil, "", &past, now)
	fresh, _ := NewItem(owner, "oeufs", nil, "", &future, now)
	orphan, _ := NewItem(owner, "farine", nil, "", &gone, now)
	manual, _ := NewItem(owner, "sel", nil, "", nil, now)

	got := Expired([]*Item{stale, fresh, orphan, manual}, map[uuid.UUID]time.Time{
		past:   now.AddDate(0, 0, -1),
		future: now.AddDate(0, 0, 2),
	}, now)

	assert.Equal(t, []*Item{stale}, got)
	assert.ElementsMatch(t, []uuid.UUID{past, future, gone}, SourceIDs([]*Item{stale, fresh, orphan, manual}))
}

func TestItem_Apply(t *testing.T) {
	q := 2.0
	item, err := NewItem(uuid.New(), " Beurre ", &q, "plaquette", nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Beurre", item.Name)

	bought := true
	require.NoError(t, item.Apply(Patch{Bought: &bought, ClearQuantity: true}, time.Now()))
	assert.True(t, item.Bought)
	assert.Nil(t, item.Quantity)

	empty := ""
	assert.ErrorIs(t, item.Apply(Patch{Name: &empty}, time.Now()), ErrNameRequired)
	assert.Equal(t, "Beurre", item.Name)

	_, err = NewItem(uuid.New(), "", nil, "", nil, time.Now())
	assert.ErrorIs(t, err, ErrNameRequired)
}
