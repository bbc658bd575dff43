package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "nico gonzalez", Normalize("Nico González"))
	assert.Equal(t, "kylian mbappe", Normalize("  Kylian   Mbappé "))
	assert.Equal(t, "alvaro senor", Normalize("Álvaro Señor"))
	assert.Equal(t, "", Normalize("   "))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("haaland", "haaland"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Zero(t, Similarity("abc", "xyz"))
	assert.Greater(t, Similarity("haaland", "haland"), 0.8)
	assert.Less(t, Similarity("haaland", "messi"), 0.5)
}

func TestBestMatch(t *testing.T) {
	options := []string{"erling haaland", "lionel messi", "kylian mbappe"}

	idx, ok := BestMatch("erling halaand", options, 0.8)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = BestMatch("john smith", options, 0.8)
	assert.False(t, ok, "nothing close enough should match")
}

func TestBestMatch_ExactCutoffAccepted(t *testing.T) {
	// "abcde" vs "abcdx" is one edit over five runes, similarity 0.8.
	idx, ok := BestMatch("abcde", []string{"abcdx"}, 0.8)
	assert.True(t, ok, "a candidate exactly at the cutoff must match")
	assert.Equal(t, 0, idx)
}

func TestBestMatch_EarlierOptionWinsTies(t *testing.T) {
	idx, ok := BestMatch("abcd", []string{"abcx", "abcy"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestBestMatch_EmptyOptions(t *testing.T) {
	_, ok := BestMatch("anything", nil, 0.5)
	assert.False(t, ok)
}
