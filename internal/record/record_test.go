package record

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecord_SetGetOrder(t *testing.T) {
	r := New(2)
	r.Set("b", "x")
	r.Set("a", int32(1))
	r.Set("b", "y")

	require.Equal(t, 2, r.Len())
	require.Equal(t, []string{"b", "a"}, r.Names())

	v, ok := r.Get("b")
	require.True(t, ok)
	require.Equal(t, "y", v)

	_, ok = r.Get("c")
	require.False(t, ok)
}

func TestRecord_NilIsAbsent(t *testing.T) {
	r := New(0)
	r.Set("a", int32(1))
	r.Set("b", int32(2))
	r.Set("a", nil)

	require.False(t, r.Has("a"))
	require.Equal(t, []string{"b"}, r.Names())

	r.Set("c", nil)
	require.Equal(t, 1, r.Len())

	// index must be rebuilt after removal
	r.Set("b", int32(3))
	v, _ := r.Get("b")
	require.Equal(t, int32(3), v)
}

func TestRecord_NilReceiver(t *testing.T) {
	var r *Record
	require.Equal(t, 0, r.Len())
	require.Nil(t, r.Fields())
	_, ok := r.Get("a")
	require.False(t, ok)
	require.True(t, r.Equal(nil))
}

func TestRecord_Equal(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	a := New(3)
	a.Set("id", int32(1))
	a.Set("at", ts)
	inner := New(1)
	inner.Set("x", "y")
	a.Set("in", inner)

	b := New(3)
	b.Set("id", int32(1))
	b.Set("at", ts.In(time.FixedZone("x", 3600)))
	inner2 := New(1)
	inner2.Set("x", "y")
	b.Set("in", inner2)

	require.True(t, a.Equal(b))

	b.Set("id", int64(1))
	require.False(t, a.Equal(b))

	c := New(3)
	c.Set("at", ts)
	c.Set("id", int32(1))
	c.Set("in", inner)
	require.False(t, a.Equal(c), "order matters")
}

func TestRecord_MarshalJSON(t *testing.T) {
	r := New(3)
	r.Set("z", int32(1))
	inner := New(1)
	inner.Set("k", "v")
	r.Set("a", inner)
	r.Set("ok", true)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.Equal(t, `{"z":1,"a":{"k":"v"},"ok":true}`, string(b))
}

func TestRecord_EqualNaN(t *testing.T) {
	a := New(2)
	a.Set("d", math.NaN())
	a.Set("f", float32(math.NaN()))
	b := New(2)
	b.Set("d", math.NaN())
	b.Set("f", float32(math.NaN()))
	require.True(t, a.Equal(b))

	b.Set("d", 1.0)
	require.False(t, a.Equal(b))
	b.Set("d", float32(math.NaN()))
	require.False(t, a.Equal(b), "float32 NaN is not a double")
}
