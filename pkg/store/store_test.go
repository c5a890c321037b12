package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string
	Value int
}

func seeded(t *testing.T, keys ...string) *Store[item] {
	t.Helper()
	s := New[item]()
	for i, k := range keys {
		require.NoError(t, s.Add(k, item{ID: k, Value: i}))
	}
	return s
}

func TestStore_AddThenGet(t *testing.T) {
	s := New[item]()
	require.NoError(t, s.Add("a", item{ID: "a", Value: 1}))

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, item{ID: "a", Value: 1}, got)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Exists("a"))
}

func TestStore_AddDuplicateRejected(t *testing.T) {
	s := seeded(t, "a")

	err := s.Add("a", item{ID: "a", Value: 99})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Equal(t, 1, s.Len())

	got, _ := s.Get("a")
	assert.Equal(t, 0, got.Value, "original entity must survive a rejected add")
	assert.Len(t, s.All(), 1)
}

func TestStore_GetMissing(t *testing.T) {
	s := New[item]()
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStore_AllPreservesInsertionOrder(t *testing.T) {
	s := seeded(t, "c", "a", "b")

	var ids []string
	for _, it := range s.All() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestStore_AllReturnsCopy(t *testing.T) {
	s := seeded(t, "a", "b")

	all := s.All()
	all[0] = item{ID: "zzz"}
	all = append(all, item{ID: "extra"})

	assert.Equal(t, 2, s.Len())
	first, _ := s.At(0)
	assert.Equal(t, "a", first.ID)
}

func TestStore_Search(t *testing.T) {
	s := seeded(t, "a", "b", "c", "d")

	even := s.Search(func(it item) bool { return it.Value%2 == 0 })
	require.Len(t, even, 2)
	assert.Equal(t, "a", even[0].ID)
	assert.Equal(t, "c", even[1].ID)

	none := s.Search(func(item) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_UpdateKeepsPosition(t *testing.T) {
	s := seeded(t, "a", "b", "c")

	assert.True(t, s.Update("b", item{ID: "b", Value: 42}))

	got, _ := s.At(1)
	assert.Equal(t, 42, got.Value)
	assert.Equal(t, 3, s.Len())
}

func TestStore_UpdateMissingIsNoop(t *testing.T) {
	s := seeded(t, "a")

	assert.False(t, s.Update("x", item{ID: "x"}))
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Exists("x"))
}

func TestStore_Delete(t *testing.T) {
	s := seeded(t, "a", "b", "c")

	assert.True(t, s.Delete("b"))
	assert.Equal(t, 2, s.Len())
	assert.Len(t, s.All(), 2)
	assert.False(t, s.Exists("b"))

	last, ok := s.At(1)
	require.True(t, ok)
	assert.Equal(t, "c", last.ID)
}

func TestStore_DeleteMissingLeavesSize(t *testing.T) {
	s := seeded(t, "a", "b")

	assert.False(t, s.Delete("missing"))
	assert.False(t, s.Delete("missing"))
	assert.Equal(t, 2, s.Len())
}

func TestStore_DeleteThenReAdd(t *testing.T) {
	s := seeded(t, "a", "b")

	require.True(t, s.Delete("a"))
	require.NoError(t, s.Add("a", item{ID: "a", Value: 7}))

	last, _ := s.At(1)
	assert.Equal(t, "a", last.ID, "re-added key goes to the end")
}

func TestStore_AtOutOfRange(t *testing.T) {
	s := seeded(t, "a")

	_, ok := s.At(-1)
	assert.False(t, ok)
	_, ok = s.At(1)
	assert.False(t, ok)
}

func TestStore_Clear(t *testing.T) {
	s := seeded(t, "a", "b")
	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.All())
	require.NoError(t, s.Add("a", item{ID: "a"}))
}
