package review

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyDocument is returned when ingestion receives no usable text.
var ErrEmptyDocument = errors.New("document text is empty")

// Document is an ingested contract: the raw text plus its ordered clauses.
// Immutable after ingestion, analysis only references clauses by index.
type Document struct {
	Name    string   `json:"name"`
	Raw     string   `json:"raw"`
	Clauses []Clause `json:"clauses"`
}

// Clause is one span of the document. Index is the 0-based position in
// document order and never changes after ingestion.
type Clause struct {
	Index   int    `json:"index"`
	Heading string `json:"heading,omitempty"`
	Text    string `json:"text"`
}

// Clause boundary patterns: "Clause 3:", "Article 7", "Section 2.", "4." / "4)"
var (
	headingRe  = regexp.MustCompile(`(?i)^\s*(clause|article|section)\s+(\d+)\s*[.:)]?\s*(.*)$`)
	numberedRe = regexp.MustCompile(`^\s*(\d+)\s*[.:)]\s+(.*)$`)
)

// Ingest splits raw text into clauses on heading boundaries. Text before the
// first heading becomes an unlabeled leading clause; a document with no
// headings at all is a single clause.
func Ingest(name, raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDocument
	}

	doc := &Document{Name: name, Raw: raw}

	lines := strings.Split(raw, "\n")
	var heading string
	var body []string
	started := false

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if heading == "" && text == "" {
			return
		}
		doc.Clauses = append(doc.Clauses, Clause{
			Index:   len(doc.Clauses),
			Heading: heading,
			Text:    text,
		})
	}

	for _, line := range lines {
		if label, rest, ok := matchHeading(line); ok {
			if started || len(strings.TrimSpace(strings.Join(body, "\n"))) > 0 {
				flush()
			}
			started = true
			heading = label
			body = body[:0]
			if rest != "" {
				body = append(body, rest)
			}
			continue
		}
		body = append(body, line)
	}
	flush()

	// No boundaries found: the whole text is one clause
	if len(doc.Clauses) == 0 {
		doc.Clauses = append(doc.Clauses, Clause{Index: 0, Text: strings.TrimSpace(raw)})
	}
	return doc, nil
}

// matchHeading reports whether the line opens a new clause, returning the
// heading label and any trailing text on the same line.
func matchHeading(line string) (label, rest string, ok bool) {
	if m := headingRe.FindStringSubmatch(line); m != nil {
		label = strings.TrimSpace(m[1] + " " + m[2])
		return label, strings.TrimSpace(m[3]), true
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return m[1], strings.TrimSpace(m[2]), true
	}
	return "", "", false
}

// HeadingText joins each clause's heading with the opening line of its body,
// used by the classifier's cue boost. Titles commonly sit on the heading line
// itself ("Clause 3: Payment Terms ..."), so the first line counts as heading
// territory.
func (d *Document) HeadingText() string {
	var b strings.Builder
	for _, c := range d.Clauses {
		if c.Heading != "" {
			b.WriteString(c.Heading)
			b.WriteString(" ")
		}
		if line, _, _ := strings.Cut(c.Text, "\n"); line != "" {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Clause returns the clause at index, or nil for document-level references.
func (d *Document) Clause(index int) *Clause {
	if index < 0 || index >= len(d.Clauses) {
		return nil
	}
	return &d.Clauses[index]
}
