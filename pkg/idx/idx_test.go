package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	require.NotEqual(t, a, b)
	require.Len(t, a.String(), 26)
	require.False(t, a.IsZero())
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	id := New()
	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = Parse("not-a-ulid")
	require.Error(t, err)
}

func TestNewAtEncodesTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	id := NewAt(at)
	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}

func TestIDsSortByTime(t *testing.T) {
	t.Parallel()

	early := NewAt(time.Now().Add(-time.Hour))
	late := NewAt(time.Now())
	require.Less(t, early.String(), late.String())
}
