package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ericksa/contractreview/internal/review"
)

// Annotated renders a copy of the contract with findings attached beneath
// the clause they reference. Clause text is reproduced verbatim, analysis
// only annotates by index.
func (r *Renderer) Annotated(res *review.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s (annotated)\n\n", res.Document.Name))

	// Findings grouped by clause index
	byClause := make(map[int][]review.RiskFinding)
	for _, f := range res.Findings {
		byClause[f.ClauseIndex] = append(byClause[f.ClauseIndex], f)
	}

	if doc := byClause[review.DocumentLevel]; len(doc) > 0 {
		b.WriteString("## Document-level notes\n\n")
		for _, f := range doc {
			writeAnnotation(&b, f)
		}
	}

	for _, clause := range res.Document.Clauses {
		if clause.Heading != "" {
			b.WriteString(fmt.Sprintf("## %s\n\n", clause.Heading))
		} else {
			b.WriteString(fmt.Sprintf("## Clause %d\n\n", clause.Index))
		}
		if clause.Text != "" {
			b.WriteString(clause.Text)
			b.WriteString("\n\n")
		}
		for _, f := range byClause[clause.Index] {
			writeAnnotation(&b, f)
		}
	}

	return b.String()
}

func writeAnnotation(b *strings.Builder, f review.RiskFinding) {
	b.WriteString(fmt.Sprintf("> ⚠ **%s** [%s/%s]", f.Name, f.Severity, f.Dimension))
	if f.Remediation != "" {
		b.WriteString(fmt.Sprintf(". Suggested: %s", f.Remediation))
	}
	b.WriteString("\n\n")
}

// Write renders both artifacts into dir and returns their paths.
func (r *Renderer) Write(dir string, res *review.Result, generatedAt time.Time) (opinionPath, annotatedPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	base := sanitize(res.Document.Name)
	opinionPath = filepath.Join(dir, base+"_opinion.md")
	annotatedPath = filepath.Join(dir, base+"_annotated.md")

	if err := os.WriteFile(opinionPath, []byte(r.Opinion(res, generatedAt)), 0o644); err != nil {
		return "", "", fmt.Errorf("write opinion: %w", err)
	}
	if err := os.WriteFile(annotatedPath, []byte(r.Annotated(res)), 0o644); err != nil {
		return "", "", fmt.Errorf("write annotated copy: %w", err)
	}
	return opinionPath, annotatedPath, nil
}

func sanitize(name string) string {
	if name == "" {
		return "contract"
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	mapper := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}
	return strings.Map(mapper, name)
}
