package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestKey_Format(t *testing.T) {
	key := Key("http://nav.example.edu", "floors")
	assert.Equal(t, "wayfinder:http://nav.example.edu:floors", key)
}

func TestKey_DifferentBaseURLsDiverge(t *testing.T) {
	assert.NotEqual(t,
		Key("http://prod.example.edu", "floors"),
		Key("http://staging.example.edu", "floors"))
}

func TestResponseCache_WriteRead(t *testing.T) {
	c := NewResponseCache(NewMemoryStore(), DefaultMaxAge)

	in := payload{Name: "library", Count: 3}
	require.NoError(t, c.Write("k", in))

	var out payload
	require.True(t, c.Read("k", &out))
	assert.Equal(t, in, out)
}

func TestResponseCache_MissingKey(t *testing.T) {
	c := NewResponseCache(NewMemoryStore(), DefaultMaxAge)

	var out payload
	assert.False(t, c.Read("missing", &out))
}

func TestResponseCache_FreshJustUnderMaxAge(t *testing.T) {
	c := NewResponseCache(NewMemoryStore(), 24*time.Hour)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetClock(func() time.Time { return now })

	require.NoError(t, c.Write("k", payload{Name: "fresh"}))

	now = base.Add(23*time.Hour + 59*time.Minute)
	var out payload
	assert.True(t, c.Read("k", &out))
}

func TestResponseCache_StalePastMaxAge(t *testing.T) {
	c := NewResponseCache(NewMemoryStore(), 24*time.Hour)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetClock(func() time.Time { return now })

	require.NoError(t, c.Write("k", payload{Name: "stale"}))

	// Stale entries read as absent, not as errors.
	now = base.Add(24*time.Hour + time.Minute)
	var out payload
	assert.False(t, c.Read("k", &out))
}

func TestResponseCache_CorruptEntryReadsAsAbsent(t *testing.T) {
	store := NewMemoryStore()
	c := NewResponseCache(store, DefaultMaxAge)

	require.NoError(t, store.Put("k", Entry{
		Timestamp: time.Now(),
		Value:     []byte("{not json"),
	}))

	var out payload
	assert.False(t, c.Read("k", &out))
}

func TestResponseCache_OverwriteReplacesEntry(t *testing.T) {
	c := NewResponseCache(NewMemoryStore(), DefaultMaxAge)

	require.NoError(t, c.Write("k", payload{Name: "old"}))
	require.NoError(t, c.Write("k", payload{Name: "new"}))

	var out payload
	require.True(t, c.Read("k", &out))
	assert.Equal(t, "new", out.Name)
}

func TestResponseCache_ZeroMaxAgeUsesDefault(t *testing.T) {
	c := NewResponseCache(NewMemoryStore(), 0)
	assert.Equal(t, DefaultMaxAge, c.maxAge)
}

func TestMemoryStore_Purge(t *testing.T) {
	store := NewMemoryStore()
	old := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()

	require.NoError(t, store.Put("old", Entry{Timestamp: old, Value: []byte("{}")}))
	require.NoError(t, store.Put("fresh", Entry{Timestamp: fresh, Value: []byte("{}")}))

	require.NoError(t, store.Purge(time.Now().Add(-24*time.Hour)))

	_, ok := store.Get("old")
	assert.False(t, ok)
	_, ok = store.Get("fresh")
	assert.True(t, ok)
}
