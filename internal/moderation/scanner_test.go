package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermScanner_EmptyTermList(t *testing.T) {
	scanner, err := NewTermScanner(nil)
	require.NoError(t, err)

	assert.Nil(t, scanner.Scan("anything at all"))
	assert.False(t, scanner.ContainsAny("anything at all"))
	assert.Equal(t, 0, scanner.TermCount())
}

func TestTermScanner_SkipsBlankTerms(t *testing.T) {
	scanner, err := NewTermScanner([]string{"", "  ", "bad"})
	require.NoError(t, err)

	assert.Equal(t, 1, scanner.TermCount())
	assert.Equal(t, []string{"bad"}, scanner.Scan("a bad day"))
}

func TestTermScanner_CaseInsensitiveBothWays(t *testing.T) {
	scanner, err := NewTermScanner([]string{"Heck"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Heck"}, scanner.Scan("what the HECK"))
	assert.Equal(t, []string{"Heck"}, scanner.Scan("what the heck"))
	assert.Equal(t, []string{"Heck"}, scanner.Scan("what the hEcK"))
}

func TestTermScanner_SubstringMatch(t *testing.T) {
	scanner, err := NewTermScanner([]string{"bad"})
	require.NoError(t, err)

	// plain substring semantics: "bad" inside "badger" counts
	assert.Equal(t, []string{"bad"}, scanner.Scan("look, a badger"))
}

func TestTermScanner_ResultsInTermOrder(t *testing.T) {
	scanner, err := NewTermScanner([]string{"alpha", "beta", "gamma"})
	require.NoError(t, err)

	hits := scanner.Scan("gamma then alpha")
	assert.Equal(t, []string{"alpha", "gamma"}, hits)
}

func TestTermScanner_DeduplicatesRepeatedHits(t *testing.T) {
	scanner, err := NewTermScanner([]string{"spam"})
	require.NoError(t, err)

	hits := scanner.Scan("spam spam spam")
	assert.Equal(t, []string{"spam"}, hits)
}

func TestTermScanner_OriginalCasingReturned(t *testing.T) {
	scanner, err := NewTermScanner([]string{"BadWord"})
	require.NoError(t, err)

	hits := scanner.Scan("badword here")
	assert.Equal(t, []string{"BadWord"}, hits)
}

func TestTermScanner_CleanContent(t *testing.T) {
	scanner, err := NewTermScanner([]string{"bad", "worse"})
	require.NoError(t, err)

	assert.Nil(t, scanner.Scan("a perfectly fine message"))
	assert.Nil(t, scanner.Scan(""))
}

func TestTermScanner_UnicodeContent(t *testing.T) {
	scanner, err := NewTermScanner([]string{"naïve", "Ärger"})
	require.NoError(t, err)

	assert.Equal(t, []string{"naïve"}, scanner.Scan("such a NAÏVE take"))
	assert.Equal(t, []string{"Ärger"}, scanner.Scan("nur ärger damit"))
}

func TestTermScanner_MultipleTermsInContent(t *testing.T) {
	scanner, err := NewTermScanner([]string{"bad", "ugly"})
	require.NoError(t, err)

	hits := scanner.Scan("the ugly and the bad")
	assert.Equal(t, []string{"bad", "ugly"}, hits)
	assert.True(t, scanner.ContainsAny("the ugly and the bad"))
}
