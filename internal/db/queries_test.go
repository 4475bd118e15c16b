package db

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/pocket/internal/kv"
)

func newTestKV(t *testing.T) *KV {
	t.Helper()
	database, err := Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewKV(database)
}

func TestKV_GetMissing(t *testing.T) {
	s := newTestKV(t)

	v, ok, err := s.Get("pc_capsule_nope")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)
}

func TestKV_SetOverwrites(t *testing.T) {
	s := newTestKV(t)

	require.NoError(t, s.Set("k", "one"))
	require.NoError(t, s.Set("k", "two"))

	v, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", v)
}

func TestKV_RemoveIsIdempotent(t *testing.T) {
	s := newTestKV(t)

	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Remove("k"))
	require.NoError(t, s.Remove("k"))

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKV_EmptyValue(t *testing.T) {
	s := newTestKV(t)

	require.NoError(t, s.Set("k", ""))
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok, "an empty value is still present")
	require.Empty(t, v)
}

func TestKV_Apply(t *testing.T) {
	s := newTestKV(t)
	require.NoError(t, s.Set("gone", "x"))

	err := s.Apply([]kv.Op{
		kv.Put("pc_capsule_a", `{"schema":"pocket-classroom/v1"}`),
		kv.Put("pc_capsules_index", `[]`),
		kv.Del("gone"),
	})
	require.NoError(t, err)

	_, ok, _ := s.Get("gone")
	require.False(t, ok)
	v, ok, _ := s.Get("pc_capsules_index")
	require.True(t, ok)
	require.Equal(t, "[]", v)
}

func TestKV_ApplyRollsBackOnFailure(t *testing.T) {
	s := newTestKV(t)
	require.NoError(t, s.Set("pc_capsules_index", "old"))

	// The trigger makes the second write of the batch fail after the first succeeded.
	_, err := s.db.Exec("CREATE TRIGGER reject_bad BEFORE INSERT ON kv WHEN NEW.key = 'bad' BEGIN SELECT RAISE(ABORT, 'rejected'); END;")
	require.NoError(t, err)

	err = s.Apply([]kv.Op{
		kv.Put("pc_capsules_index", "new"),
		kv.Put("bad", "x"),
	})
	require.Error(t, err)

	v, _, err := s.Get("pc_capsules_index")
	require.NoError(t, err)
	require.Equal(t, "old", v, "a failed batch must not leave partial writes")
}

func TestKV_Keys(t *testing.T) {
	s := newTestKV(t)
	for _, k := range []string{"pc_capsule_b", "pc_capsule_a", "pc_capsules_index", "pcXcapsule_z", "pc_progress_a"} {
		require.NoError(t, s.Set(k, "{}"))
	}

	keys, err := s.Keys("pc_capsule_")
	require.NoError(t, err)
	require.Equal(t, []string{"pc_capsule_a", "pc_capsule_b"}, keys)
}
