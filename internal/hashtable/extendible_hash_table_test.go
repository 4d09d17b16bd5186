package hashtable

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSplitAtDepthZero exercises the literal "hash split at depth 0"
// scenario: two keys landing in the same single-entry bucket must
// force one directory expansion and one bucket split. The scenario in
// the design doc states bucket_size=2, but under the documented
// insert algorithm (a bucket only splits once a THIRD key finds it
// already at capacity) two inserts into a bucket_size=2 table never
// split at all. bucket_size=1 is what actually produces the described
// outcome, so that's what this test uses.
func TestSplitAtDepthZero(t *testing.T) {
	tbl := New[uint64, uint64](1, IdentityHasher())

	tbl.Insert(0, 0)
	tbl.Insert(1, 1)

	require.EqualValues(t, 1, tbl.GlobalDepth())
	require.Equal(t, 2, tbl.NumBuckets())

	v, ok := tbl.Find(0)
	require.True(t, ok)
	assert.EqualValues(t, 0, v)

	v, ok = tbl.Find(1)
	require.True(t, ok)
	assert.EqualValues(t, 1, v)

	assert.Equal(t, -1, tbl.LocalDepth(2), "index past directory length reports -1")
}

// TestDirectoryDoubleAndSplit exercises the "directory double" scenario:
// bucket_size=2, identity hash, keys 0, 4, 1. The design doc hedges on
// the exact resulting local depths ("1 or 2 depending on
// redistribution"); this test asserts only what must hold regardless
// of that ambiguity: every key is still findable, the global depth is
// at least 1, and every directory slot below 2^global_depth references
// a bucket whose local depth does not exceed the global depth.
func TestDirectoryDoubleAndSplit(t *testing.T) {
	tbl := New[uint64, uint64](2, IdentityHasher())

	tbl.Insert(0, 0)
	tbl.Insert(4, 4)
	tbl.Insert(1, 1)

	v, ok := tbl.Find(4)
	require.True(t, ok)
	assert.EqualValues(t, 4, v)

	v, ok = tbl.Find(1)
	require.True(t, ok)
	assert.EqualValues(t, 1, v)

	v, ok = tbl.Find(0)
	require.True(t, ok)
	assert.EqualValues(t, 0, v)

	gd := tbl.GlobalDepth()
	assert.GreaterOrEqual(t, gd, uint(1))

	for i := 0; i < (1 << gd); i++ {
		ld := tbl.LocalDepth(i)
		require.GreaterOrEqual(t, ld, 0)
		assert.LessOrEqual(t, uint(ld), gd)
	}
}

// TestUpsertOverwritesValue checks that inserting an already-present
// key updates its value in place without growing the bucket.
func TestUpsertOverwritesValue(t *testing.T) {
	tbl := New[uint64, string](4, IdentityHasher())

	tbl.Insert(7, "first")
	tbl.Insert(7, "second")

	v, ok := tbl.Find(7)
	require.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, 1, tbl.NumBuckets())
}

func TestRemove(t *testing.T) {
	tbl := New[uint64, uint64](4, IdentityHasher())

	tbl.Insert(1, 1)
	assert.True(t, tbl.Remove(1))
	assert.False(t, tbl.Remove(1))

	_, ok := tbl.Find(1)
	assert.False(t, ok)
}

func TestFindMissingKey(t *testing.T) {
	tbl := New[uint64, uint64](4, IdentityHasher())
	_, ok := tbl.Find(42)
	assert.False(t, ok)
}

// TestMatchesReferenceMap is a property test: for a long randomized
// sequence of insert/remove/find operations, the table must agree with
// a plain Go map used as the reference oracle, and at the end every
// directory slot's local depth must not exceed the global depth.
func TestMatchesReferenceMap(t *testing.T) {
	tbl := New[uint64, uint64](3, XXHashUint64())
	reference := make(map[uint64]uint64)

	rng := rand.New(rand.NewSource(7))
	const keySpace = 200

	for i := 0; i < 5000; i++ {
		key := uint64(rng.Intn(keySpace))
		switch rng.Intn(3) {
		case 0:
			val := rng.Uint64()
			tbl.Insert(key, val)
			reference[key] = val
		case 1:
			delete(reference, key)
			tbl.Remove(key)
		default:
			expected, expectedOK := reference[key]
			got, gotOK := tbl.Find(key)
			require.Equal(t, expectedOK, gotOK, "key %d", key)
			if expectedOK {
				require.Equal(t, expected, got, "key %d", key)
			}
		}
	}

	for k, v := range reference {
		got, ok := tbl.Find(k)
		require.True(t, ok, "key %d should be present", k)
		require.Equal(t, v, got, "key %d", k)
	}

	gd := tbl.GlobalDepth()
	require.LessOrEqual(t, gd, uint(maxDepth))
	for i := 0; i < (1 << gd); i++ {
		ld := tbl.LocalDepth(i)
		require.GreaterOrEqual(t, ld, 0)
		require.LessOrEqual(t, uint(ld), gd)
	}
}

func TestStringKeys(t *testing.T) {
	tbl := New[string, int](2, XXHashString())

	for i := 0; i < 50; i++ {
		tbl.Insert(strconv.Itoa(i), i)
	}
	for i := 0; i < 50; i++ {
		v, ok := tbl.Find(strconv.Itoa(i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestLocalDepthOutOfRange(t *testing.T) {
	tbl := New[uint64, uint64](4, IdentityHasher())
	assert.Equal(t, -1, tbl.LocalDepth(-1))
	assert.Equal(t, -1, tbl.LocalDepth(1))
}

func ExampleTable_Insert() {
	tbl := New[uint64, string](4, IdentityHasher())
	tbl.Insert(1, "a")
	v, ok := tbl.Find(1)
	fmt.Println(v, ok)
	// Output: a true
}
