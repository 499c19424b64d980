package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericksa/contractreview/internal/kb"
	"github.com/ericksa/contractreview/internal/review"
)

// Renderer turns review results into human-readable artifacts. Timestamps
// appear only here, never in the scored data.
type Renderer struct {
	kb *kb.KnowledgeBase
}

func NewRenderer(base *kb.KnowledgeBase) *Renderer {
	return &Renderer{kb: base}
}

// Opinion renders the markdown legal opinion for a completed review.
func (r *Renderer) Opinion(res *review.Result, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Review Opinion: %s\n\n", res.Document.Name))
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04")))

	b.WriteString("## Overview\n\n")
	b.WriteString("| | |\n|---|---|\n")
	b.WriteString(fmt.Sprintf("| Contract type | %s |\n", res.Profile.Name))
	b.WriteString(fmt.Sprintf("| Classification confidence | %.2f |\n", res.Confidence))
	b.WriteString(fmt.Sprintf("| Review depth | %s |\n", res.Depth))
	b.WriteString(fmt.Sprintf("| Clauses | %d |\n", len(res.Document.Clauses)))
	b.WriteString(fmt.Sprintf("| Findings | %d |\n", len(res.Findings)))
	b.WriteString("\n")

	if res.Context != (review.Context{}) {
		b.WriteString("## Review Context\n\n")
		if res.Context.Party != "" {
			b.WriteString(fmt.Sprintf("- Representing: %s\n", res.Context.Party))
		}
		if res.Context.Position != "" {
			b.WriteString(fmt.Sprintf("- Bargaining position: %s\n", res.Context.Position))
		}
		if res.Context.History != "" {
			b.WriteString(fmt.Sprintf("- Prior dealings: %s\n", res.Context.History))
		}
		if res.Context.Focus != "" {
			b.WriteString(fmt.Sprintf("- Stated focus: %s\n", res.Context.Focus))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Score\n\n")
	b.WriteString("| Dimension | Score |\n|---|---|\n")
	for _, ds := range res.Report.Dimensions {
		b.WriteString(fmt.Sprintf("| %s | %.1f |\n", ds.Dimension, ds.Value))
	}
	b.WriteString(fmt.Sprintf("| **Composite** | **%d** |\n\n", res.Report.Composite))
	b.WriteString(fmt.Sprintf("**Risk level: %s** (%s)\n\n", res.Report.RiskLevel, res.Report.RiskLevel.Advice()))

	b.WriteString("## Risk Summary\n\n")
	counts := map[kb.Severity]int{}
	for _, f := range res.Findings {
		counts[f.Severity]++
	}
	b.WriteString("| Severity | Count |\n|---|---|\n")
	for _, sev := range kb.Severities {
		b.WriteString(fmt.Sprintf("| %s | %d |\n", sev, counts[sev]))
	}
	b.WriteString("\n")

	if len(res.Findings) > 0 {
		b.WriteString("## Findings\n\n")
		for i, f := range res.Findings {
			b.WriteString(fmt.Sprintf("### %d. %s [%s/%s]\n\n", i+1, f.Name, f.Severity, f.Dimension))
			b.WriteString(fmt.Sprintf("- Location: %s\n", r.location(res.Document, f.ClauseIndex)))
			if f.Source == review.SourceChecklist {
				b.WriteString("- Origin: required element missing\n")
			}
			if f.Remediation != "" {
				b.WriteString(fmt.Sprintf("- Remediation: %s\n", r.frame(f.Remediation, res.Context)))
			}
			b.WriteString("\n")
		}
	}

	if len(res.Checklist) > 0 {
		b.WriteString("## Checklist Coverage\n\n")
		b.WriteString("| Item | Status | Evidence |\n|---|---|---|\n")
		for _, c := range res.Checklist {
			b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", c.Description, c.Status, r.location(res.Document, c.ClauseIndex)))
		}
		b.WriteString("\n")
		r.suggestStandards(&b, res)
	}

	if res.Analysis != nil {
		b.WriteString("## Layered Analysis\n\n")
		for _, layer := range res.Analysis.Layers {
			b.WriteString(fmt.Sprintf("### %s\n\n", layerTitle(layer.Layer)))
			b.WriteString(fmt.Sprintf("%d finding(s), %d checklist item(s).\n\n", len(layer.Findings), len(layer.Checklist)))
			for _, line := range layer.Narrative {
				b.WriteString(fmt.Sprintf("- %s\n", line))
			}
			if len(layer.Narrative) > 0 {
				b.WriteString("\n")
			}
		}
		b.WriteString("### Review Path\n\n")
		for _, stage := range res.Analysis.Stages {
			b.WriteString(fmt.Sprintf("- %s: %d finding(s)\n", stageTitle(stage.Stage), len(stage.Findings)))
		}
		b.WriteString("\n")
	}

	if len(res.Report.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for i, rec := range res.Report.Recommendations {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.frame(rec, res.Context)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// suggestStandards appends reference wording for missing or partial items
// when the knowledge base carries a matching clause standard.
func (r *Renderer) suggestStandards(b *strings.Builder, res *review.Result) {
	wrote := false
	for _, c := range res.Checklist {
		if c.Status == review.StatusSatisfied {
			continue
		}
		std, ok := r.kb.StandardFor(c.ItemID, res.Profile.ID)
		if !ok {
			continue
		}
		if !wrote {
			b.WriteString("### Suggested Wording\n\n")
			wrote = true
		}
		b.WriteString(fmt.Sprintf("**%s**\n\n", c.Description))
		if len(std.KeyElements) > 0 {
			b.WriteString(fmt.Sprintf("Key elements: %s\n\n", strings.Join(std.KeyElements, ", ")))
		}
		b.WriteString(fmt.Sprintf("> %s\n\n", std.Template))
	}
}

// frame prefixes remediation wording with the represented side's position
// when a context was supplied. Matching is never affected by context.
func (r *Renderer) frame(text string, ctx review.Context) string {
	switch ctx.Position {
	case review.PositionWeak:
		return text + " (prioritize: limited leverage to renegotiate later)"
	case review.PositionStrong:
		return text + " (favorable position to demand this change)"
	}
	return text
}

func (r *Renderer) location(doc *review.Document, index int) string {
	if index == review.DocumentLevel {
		return "document-level"
	}
	c := doc.Clause(index)
	if c == nil {
		return fmt.Sprintf("clause %d", index)
	}
	if c.Heading != "" {
		return fmt.Sprintf("clause %d (%s)", index, c.Heading)
	}
	return fmt.Sprintf("clause %d", index)
}

func layerTitle(l kb.Layer) string {
	switch l {
	case kb.LayerMacro:
		return "Macro: Transaction Structure"
	case kb.LayerMeso:
		return "Meso: Contract Form"
	case kb.LayerMicro:
		return "Micro: Clause Language"
	}
	return string(l)
}

func stageTitle(s kb.Stage) string {
	switch s {
	case kb.StageUnderstand:
		return "Understand the transaction"
	case kb.StageStructure:
		return "Design the structure"
	case kb.StageDraft:
		return "Draft the contract"
	case kb.StageReview:
		return "Review and refine"
	}
	return string(s)
}
