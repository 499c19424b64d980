package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngest_EmptyText(t *testing.T) {
	_, err := Ingest("empty.txt", "   \n\t  ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestIngest_SplitsOnHeadings(t *testing.T) {
	raw := "Clause 1: Subject Matter\n" +
		"The seller shall deliver 100 units of goods.\n" +
		"Clause 2: Price\n" +
		"The buyer shall pay on delivery.\n" +
		"Article 3\n" +
		"Disputes go to arbitration."

	doc, err := Ingest("sale.txt", raw)
	require.NoError(t, err)
	require.Len(t, doc.Clauses, 3)

	assert.Equal(t, "Clause 1", doc.Clauses[0].Heading)
	assert.Equal(t, 0, doc.Clauses[0].Index)
	assert.Contains(t, doc.Clauses[0].Text, "Subject Matter")
	assert.Contains(t, doc.Clauses[0].Text, "100 units")

	assert.Equal(t, "Clause 2", doc.Clauses[1].Heading)
	assert.Equal(t, "Article 3", doc.Clauses[2].Heading)
	assert.Equal(t, 2, doc.Clauses[2].Index)
}

func TestIngest_NumberedHeadings(t *testing.T) {
	raw := "1. Scope\nThe works cover the whole site.\n2) Payment\nMonthly installments."

	doc, err := Ingest("works.txt", raw)
	require.NoError(t, err)
	require.Len(t, doc.Clauses, 2)
	assert.Equal(t, "1", doc.Clauses[0].Heading)
	assert.Equal(t, "2", doc.Clauses[1].Heading)
}

func TestIngest_PreambleBecomesLeadingClause(t *testing.T) {
	raw := "This agreement is made between the parties.\n" +
		"Clause 1: Term\nThe term is two years."

	doc, err := Ingest("preamble.txt", raw)
	require.NoError(t, err)
	require.Len(t, doc.Clauses, 2)
	assert.Empty(t, doc.Clauses[0].Heading)
	assert.Contains(t, doc.Clauses[0].Text, "made between the parties")
	assert.Equal(t, "Clause 1", doc.Clauses[1].Heading)
}

func TestIngest_NoHeadingsSingleClause(t *testing.T) {
	doc, err := Ingest("plain.txt", "just one block of contract text with no structure")
	require.NoError(t, err)
	require.Len(t, doc.Clauses, 1)
	assert.Equal(t, 0, doc.Clauses[0].Index)
	assert.Empty(t, doc.Clauses[0].Heading)
}

func TestDocument_HeadingTextIncludesTitleLine(t *testing.T) {
	raw := "Clause 1: subject matter and price\nThe goods are as described.\nMore body text."

	doc, err := Ingest("titled.txt", raw)
	require.NoError(t, err)

	ht := doc.HeadingText()
	assert.Contains(t, ht, "Clause 1")
	assert.Contains(t, ht, "subject matter and price")
	assert.NotContains(t, ht, "More body text")
}

func TestDocument_ClauseLookup(t *testing.T) {
	doc, err := Ingest("one.txt", "Clause 1: Term\nTwo years.")
	require.NoError(t, err)

	require.NotNil(t, doc.Clause(0))
	assert.Nil(t, doc.Clause(DocumentLevel))
	assert.Nil(t, doc.Clause(5))
}
