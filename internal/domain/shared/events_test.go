package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ at time.Time }

func (e testEvent) EventName() string     { return "test.happened" }
func (e testEvent) OccurredAt() time.Time { return e.at }

func TestAggregateRoot_EventsDrains(t *testing.T) {
	var root AggregateRoot
	root.AddEvent(testEvent{at: time.Now()})
	root.AddEvent(testEvent{at: time.Now()})

	assert.Len(t, root.Events(), 2)
	assert.Empty(t, root.Events())
}

func TestDayBoundaries(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	instant := time.Date(2024, 1, 7, 0, 30, 0, 0, paris) // 2024-01-06T23:30Z

	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), StartOfDay(instant))
	assert.Equal(t, time.Date(2024, 1, 6, 23, 59, 59, 999999999, time.UTC), EndOfDay(instant))
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), day)

	day, err = ParseDay("2024-01-03T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDay("next tuesday")
	assert.Error(t, err)
}

func TestParseInstant(t *testing.T) {
	at, err := ParseInstant("2024-01-03T10:00:00+01:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), at)

	at, err = ParseInstant("2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), at)
}
