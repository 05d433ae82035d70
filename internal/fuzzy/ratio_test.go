package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcess(t *testing.T) {
	assert.Equal(t, "barber boss", Process("  Barber-Boss! "))
	assert.Equal(t, "octo hair", Process("octo_hair"))
	assert.Equal(t, "山田 工務店", Process("山田・工務店"))
	assert.Equal(t, "", Process("---"))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 100, Ratio("abc", "abc"), 0.001)
	assert.InDelta(t, 100, Ratio("", ""), 0.001)
	assert.InDelta(t, 0, Ratio("abc", "xyz"), 0.001)
	// one deletion over eleven runes on each side: 1 - 1/21
	assert.InDelta(t, 95.238, Ratio("barber boss", "barberboss"), 0.01)
	assert.InDelta(t, 50, Ratio("ab", "ac"), 0.001)
}

func TestPartialRatio(t *testing.T) {
	assert.InDelta(t, 100, PartialRatio("boss", "barberboss"), 0.001)
	assert.InDelta(t, 100, PartialRatio("barberboss", "boss"), 0.001)
	assert.Equal(t, 0.0, PartialRatio("", "boss"))
	assert.Less(t, PartialRatio("xyz", "barberboss"), 50.0)
}

func TestTokenSortRatio(t *testing.T) {
	assert.InDelta(t, 100, TokenSortRatio("boss barber", "Barber Boss"), 0.001)
	assert.Equal(t, 0.0, TokenSortRatio("", "x"))
}

func TestTokenSetRatio(t *testing.T) {
	assert.InDelta(t, 100, TokenSetRatio("barber boss", "barber boss tokyo"), 0.001)
	assert.Less(t, TokenSetRatio("barber boss", "hair salon"), 60.0)
	assert.Equal(t, 0.0, TokenSetRatio("x", ""))
}

func TestWRatio(t *testing.T) {
	assert.InDelta(t, 100, WRatio("Barber Boss", "barber-boss"), 0.001)
	assert.Equal(t, 0.0, WRatio("", "x"))

	// Large length gap scales the partial match down.
	got := WRatio("boss", "barberbosstokyoshop")
	assert.Greater(t, got, 50.0)
	assert.Less(t, got, 95.0)
}
