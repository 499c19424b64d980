package review

import (
	"github.com/ericksa/contractreview/internal/kb"
)

// Analyzer organizes combined findings and checklist results into the
// macro/meso/micro layers and the four-step review staging. Grouping only,
// no scoring happens here.
type Analyzer struct {
	narrativeCap int
}

func NewAnalyzer(narrativeCap int) *Analyzer {
	if narrativeCap <= 0 {
		narrativeCap = 1
	}
	return &Analyzer{narrativeCap: narrativeCap}
}

// LayerView is one structural layer's slice of the review.
type LayerView struct {
	Layer     kb.Layer          `json:"layer"`
	Findings  []RiskFinding     `json:"findings"`
	Checklist []ChecklistResult `json:"checklist"`
	Narrative []string          `json:"narrative"`
}

// StageView is one step of the four-step review narrative.
type StageView struct {
	Stage    kb.Stage      `json:"stage"`
	Findings []RiskFinding `json:"findings"`
}

// Analysis is the layered organization of a standard or deep review.
type Analysis struct {
	Layers []LayerView `json:"layers"`
	Stages []StageView `json:"stages"`
}

// Organize groups findings and checklist results by declared layer and
// stage. Quick reviews skip this step entirely and get nil. Layer
// assignment comes from the template or checklist item definition, a
// finding belongs to exactly one layer.
func (a *Analyzer) Organize(depth Depth, findings []RiskFinding, results []ChecklistResult) *Analysis {
	if depth == DepthQuick {
		return nil
	}

	out := &Analysis{}
	for _, layer := range kb.Layers {
		view := LayerView{Layer: layer, Findings: []RiskFinding{}, Checklist: []ChecklistResult{}}
		for _, f := range findings {
			if f.Layer == layer {
				view.Findings = append(view.Findings, f)
			}
		}
		for _, r := range results {
			if r.Layer == layer {
				view.Checklist = append(view.Checklist, r)
			}
		}
		view.Narrative = a.narrative(view.Findings)
		out.Layers = append(out.Layers, view)
	}

	for _, stage := range kb.Stages {
		view := StageView{Stage: stage, Findings: []RiskFinding{}}
		for _, f := range findings {
			if f.Stage == stage {
				view.Findings = append(view.Findings, f)
			}
		}
		out.Stages = append(out.Stages, view)
	}
	return out
}

// narrative concatenates remediation text of the layer's highest-severity
// findings, capped to keep output bounded. Findings arrive already sorted
// severity-descending, so the first distinct remediations win.
func (a *Analyzer) narrative(findings []RiskFinding) []string {
	out := make([]string, 0, a.narrativeCap)
	seen := make(map[string]bool)
	for _, f := range findings {
		if f.Remediation == "" || seen[f.Remediation] {
			continue
		}
		seen[f.Remediation] = true
		out = append(out, f.Remediation)
		if len(out) == a.narrativeCap {
			break
		}
	}
	return out
}
