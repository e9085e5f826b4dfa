package store

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundtrip(t *testing.T) {
	s := New(memfs.New(), time.Minute)

	_, ok := s.Get("abcDEF123", true)
	require.False(t, ok, "empty store must miss")

	require.NoError(t, s.Put("abcDEF123", true, []byte("%PDF-searchable")))
	got, ok := s.Get("abcDEF123", true)
	require.True(t, ok)
	require.Equal(t, []byte("%PDF-searchable"), got)
}

func TestVariantsAreDistinct(t *testing.T) {
	s := New(memfs.New(), time.Minute)
	require.NoError(t, s.Put("abcDEF123", true, []byte("searchable")))

	_, ok := s.Get("abcDEF123", false)
	require.False(t, ok, "flat variant must not be served from the searchable entry")

	require.NoError(t, s.Put("abcDEF123", false, []byte("flat")))
	got, ok := s.Get("abcDEF123", false)
	require.True(t, ok)
	require.Equal(t, []byte("flat"), got)
}

func TestStaleEntriesMiss(t *testing.T) {
	s := New(memfs.New(), time.Minute)
	require.NoError(t, s.Put("abcDEF123", true, []byte("old")))

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, ok := s.Get("abcDEF123", true)
	require.False(t, ok, "entries beyond the TTL must be treated as absent")
}

func TestZeroTTLNeverStale(t *testing.T) {
	s := New(memfs.New(), 0)
	require.NoError(t, s.Put("abcDEF123", true, []byte("keep")))

	s.now = func() time.Time { return time.Now().Add(365 * 24 * time.Hour) }
	_, ok := s.Get("abcDEF123", true)
	require.True(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	s := New(memfs.New(), time.Minute)
	require.NoError(t, s.Put("abcDEF123", true, []byte("v1")))
	require.NoError(t, s.Put("abcDEF123", true, []byte("v2")))
	got, _ := s.Get("abcDEF123", true)
	require.Equal(t, []byte("v2"), got)
}

func TestCheckWritable(t *testing.T) {
	s := New(memfs.New(), time.Minute)
	require.NoError(t, s.CheckWritable())
}

func TestNewOS(t *testing.T) {
	dir := t.TempDir()
	s, err := NewOS(dir+"/files", time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.CheckWritable())
	require.NoError(t, s.Put("abcDEF123", false, []byte("on disk")))
	got, ok := s.Get("abcDEF123", false)
	require.True(t, ok)
	require.Equal(t, []byte("on disk"), got)
}
