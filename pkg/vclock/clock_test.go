package vclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "single entry", in: "replica-a:1", want: "replica-a:1"},
		{name: "already sorted", in: "replica-a:1|replica-b:2", want: "replica-a:1|replica-b:2"},
		{name: "out of order input is canonicalized", in: "replica-b:2|replica-a:1", want: "replica-a:1|replica-b:2"},
		{name: "multi-digit generation", in: "replica-a:42", want: "replica-a:42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestParse_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "duplicate uid", in: "replica-a:1|replica-a:2"},
		{name: "empty uid", in: ":1"},
		{name: "missing colon", in: "replica-a"},
		{name: "trailing separator", in: "replica-a:1|"},
		{name: "leading separator", in: "|replica-a:1"},
		{name: "empty segment in middle", in: "replica-a:1||replica-b:2"},
		{name: "non-numeric generation", in: "replica-a:x"},
		{name: "zero generation", in: "replica-a:0"},
		{name: "negative generation", in: "replica-a:-1"},
		{name: "colon with no generation", in: "replica-a:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Empty().IsEmpty())
	assert.True(t, MustParse("").IsEmpty())
	assert.False(t, MustParse("replica-a:1").IsEmpty())
}

func TestGeneration(t *testing.T) {
	c := MustParse("replica-a:3|replica-b:7")
	assert.Equal(t, 3, c.Generation("replica-a"))
	assert.Equal(t, 7, c.Generation("replica-b"))
	assert.Equal(t, 0, c.Generation("replica-c"))
}

func TestIncrement(t *testing.T) {
	c := Empty()
	c1 := c.Increment("replica-a")
	assert.Equal(t, "replica-a:1", c1.String())
	assert.True(t, c.IsEmpty(), "Increment must not mutate the receiver")

	c2 := c1.Increment("replica-a")
	assert.Equal(t, "replica-a:2", c2.String())
	assert.Equal(t, "replica-a:1", c1.String(), "Increment must not mutate the receiver")

	c3 := c2.Increment("replica-b")
	assert.Equal(t, "replica-a:2|replica-b:1", c3.String())
}

func TestMaximize(t *testing.T) {
	a := MustParse("replica-a:3|replica-b:1")
	b := MustParse("replica-b:5|replica-c:2")

	got := a.Maximize(b)
	assert.Equal(t, "replica-a:3|replica-b:5|replica-c:2", got.String())

	// commutative
	assert.Equal(t, got.String(), b.Maximize(a).String())

	// idempotent
	assert.Equal(t, got.String(), got.Maximize(got).String())
}

func TestIsNewer(t *testing.T) {
	empty := Empty()
	a1 := MustParse("replica-a:1")
	a2 := MustParse("replica-a:2")
	a1b1 := MustParse("replica-a:1|replica-b:1")

	assert.False(t, empty.IsNewer(empty))
	assert.False(t, empty.IsNewer(a1), "empty clock is never newer")
	assert.True(t, a1.IsNewer(empty), "any non-empty clock is newer than empty")

	assert.True(t, a2.IsNewer(a1))
	assert.False(t, a1.IsNewer(a2))
	assert.False(t, a1.IsNewer(a1), "a clock is never newer than itself")

	assert.True(t, a1b1.IsNewer(a1), "a superset of entries with no regressions is newer")
	assert.False(t, a1.IsNewer(a1b1))

	concurrent1 := MustParse("replica-a:2|replica-b:1")
	concurrent2 := MustParse("replica-a:1|replica-b:2")
	assert.False(t, concurrent1.IsNewer(concurrent2))
	assert.False(t, concurrent2.IsNewer(concurrent1))
}

func TestEqualAndConcurrent(t *testing.T) {
	a := MustParse("replica-a:1|replica-b:2")
	b := MustParse("replica-b:2|replica-a:1")
	assert.True(t, a.Equal(b), "equality must not depend on input order")

	c := MustParse("replica-a:2|replica-b:1")
	assert.False(t, a.Equal(c))
	assert.True(t, a.Concurrent(c))
	assert.False(t, a.Concurrent(a))
	assert.False(t, a.Concurrent(b), "equal clocks are not concurrent")
}

func TestMustParsePanicsOnMalformedInput(t *testing.T) {
	assert.Panics(t, func() {
		MustParse("not-a-clock")
	})
}
