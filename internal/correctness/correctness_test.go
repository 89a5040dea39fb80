package correctness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func drawID(t *rapid.T, label string) ID {
	return rapid.SampledFrom([]ID{Good, Suspect, Error}).Draw(t, label)
}

func TestMerge_Laws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := drawID(t, "a")
		b := drawID(t, "b")
		c := drawID(t, "c")

		if Merge(a, b) != Merge(b, a) {
			t.Fatalf("merge not commutative for %v, %v", a, b)
		}
		if Merge(Merge(a, b), c) != Merge(a, Merge(b, c)) {
			t.Fatalf("merge not associative for %v, %v, %v", a, b, c)
		}
		if Merge(a, a) != a {
			t.Fatalf("merge not idempotent for %v", a)
		}
		if Merge(a, Error) != Error {
			t.Fatalf("error does not absorb %v", a)
		}
	})
}

func TestMerge_Table(t *testing.T) {
	tests := []struct {
		a, b, want ID
	}{
		{Good, Good, Good},
		{Good, Suspect, Suspect},
		{Suspect, Good, Suspect},
		{Suspect, Error, Error},
		{Good, Error, Error},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"_"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.a, tt.b))
		})
	}
}

func TestMergeAll(t *testing.T) {
	assert.Equal(t, Good, MergeAll())
	assert.Equal(t, Suspect, MergeAll(Good, Suspect, Good))
	assert.Equal(t, Error, MergeAll(Suspect, Error, Good))
}

func TestIsUsable(t *testing.T) {
	assert.True(t, IsUsable(Good))
	assert.True(t, IsUsable(Suspect))
	assert.False(t, IsUsable(Error))
}
