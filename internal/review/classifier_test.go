package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericksa/contractreview/internal/kb"
)

func TestClassifier_FullSignature(t *testing.T) {
	c := NewClassifier(newTestKB(t), 0.15, 1.25)

	doc := mustIngest(t, "sale.txt",
		"Clause 1: price and delivery\n"+
			"The seller sells and the buyer agrees to purchase the goods described below.")

	ranked := c.Identify(doc)
	require.NotEmpty(t, ranked)
	assert.Equal(t, "sale", ranked[0].Profile.ID)
	assert.Equal(t, 6, ranked[0].Matched)
	assert.Equal(t, 1.0, ranked[0].Confidence)
}

func TestClassifier_FallbackToGeneric(t *testing.T) {
	c := NewClassifier(newTestKB(t), 0.15, 1.25)

	doc := mustIngest(t, "memo.txt", "An internal memo about office furniture.")

	ranked := c.Identify(doc)
	require.Len(t, ranked, 1)
	assert.Equal(t, kb.GenericProfileID, ranked[0].Profile.ID)
	assert.Equal(t, 0.0, ranked[0].Confidence)
}

func TestClassifier_BelowThresholdFallsBack(t *testing.T) {
	// One keyword out of a six-entry signature is 1/6, under a 0.5 threshold.
	c := NewClassifier(newTestKB(t), 0.5, 1.25)

	doc := mustIngest(t, "weak.txt", "The goods will be discussed later.")

	ranked := c.Identify(doc)
	require.Len(t, ranked, 1)
	assert.Equal(t, kb.GenericProfileID, ranked[0].Profile.ID)
}

func TestClassifier_HeadingBoost(t *testing.T) {
	c := NewClassifier(newTestKB(t), 0.15, 1.25)

	// Two keywords and one cue: 3/6 either way, boosted only when the cue
	// sits in a heading.
	inHeading := mustIngest(t, "a.txt",
		"Clause 1: price\nThe seller delivers the goods next month.")
	inBody := mustIngest(t, "b.txt",
		"Clause 1: general terms\nThe seller delivers the goods at the agreed price.")

	boosted := c.Identify(inHeading)
	flat := c.Identify(inBody)
	require.NotEmpty(t, boosted)
	require.NotEmpty(t, flat)

	assert.InDelta(t, 0.625, boosted[0].Confidence, 1e-9)
	assert.InDelta(t, 0.5, flat[0].Confidence, 1e-9)
}

func TestClassifier_ConfidenceClampedToOne(t *testing.T) {
	c := NewClassifier(newTestKB(t), 0.15, 2.0)

	doc := mustIngest(t, "full.txt",
		"Clause 1: price and delivery\n"+
			"The seller sells, the buyer agrees to purchase the goods.")

	ranked := c.Identify(doc)
	require.NotEmpty(t, ranked)
	assert.LessOrEqual(t, ranked[0].Confidence, 1.0)
}
