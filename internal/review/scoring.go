package review

import (
	"math"
	"sort"

	"github.com/ericksa/contractreview/internal/kb"
)

// RiskLevel is the four-tier verdict derived from the composite score.
type RiskLevel string

const (
	LevelHigh    RiskLevel = "high"
	LevelMedium  RiskLevel = "medium"
	LevelLow     RiskLevel = "low"
	LevelMinimal RiskLevel = "minimal"
)

// Advice returns the action wording attached to a risk level.
func (l RiskLevel) Advice() string {
	switch l {
	case LevelHigh:
		return "must revise key clauses"
	case LevelMedium:
		return "recommend optimizing important clauses"
	case LevelLow:
		return "consider refining general clauses"
	case LevelMinimal:
		return "may sign as-is"
	}
	return ""
}

// DimensionScore is one axis of the composite. FindingIndexes points into
// the run's finding sequence, the score is derived from those findings only.
type DimensionScore struct {
	Dimension      kb.Dimension `json:"dimension"`
	Value          float64      `json:"value"`
	RawPenalty     float64      `json:"raw_penalty"`
	FindingIndexes []int        `json:"finding_indexes"`
}

// ScoringReport is the final scored output of a review run. It carries no
// timestamp: identical inputs must produce identical reports.
type ScoringReport struct {
	Dimensions      []DimensionScore `json:"dimensions"`
	Composite       int              `json:"composite"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	Recommendations []string         `json:"recommendations"`
}

// ScoringOptions are the immutable scoring constants, validated at startup.
type ScoringOptions struct {
	Weights            map[kb.Dimension]float64
	Penalties          map[kb.Severity]float64
	ThresholdHigh      float64
	ThresholdMedium    float64
	ThresholdLow       float64
	PenaltyCap         float64
	MaxRecommendations int
}

// DefaultScoringOptions mirrors the shipped configuration defaults.
func DefaultScoringOptions() ScoringOptions {
	return ScoringOptions{
		Weights: map[kb.Dimension]float64{
			kb.DimensionBusiness:  0.30,
			kb.DimensionLegal:     0.40,
			kb.DimensionPractical: 0.30,
		},
		Penalties: map[kb.Severity]float64{
			kb.SeverityFatal:   25,
			kb.SeverityMajor:   12,
			kb.SeverityGeneral: 5,
			kb.SeverityMinor:   2,
		},
		ThresholdHigh:      80,
		ThresholdMedium:    60,
		ThresholdLow:       40,
		PenaltyCap:         60,
		MaxRecommendations: 5,
	}
}

// Scorer aggregates findings into dimension scores and the composite.
type Scorer struct {
	opts ScoringOptions
}

func NewScorer(opts ScoringOptions) *Scorer {
	return &Scorer{opts: opts}
}

// Score computes the three dimension scores, the weighted composite and the
// top recommendations. findings must already contain the checklist
// escalations; checklist results are accepted for interface completeness but
// only escalated findings affect the numbers.
func (s *Scorer) Score(findings []RiskFinding, results []ChecklistResult) *ScoringReport {
	report := &ScoringReport{}

	composite := 0.0
	for _, dim := range kb.Dimensions {
		ds := DimensionScore{Dimension: dim, FindingIndexes: []int{}}
		for i, f := range findings {
			if f.Dimension != dim {
				continue
			}
			ds.RawPenalty += s.opts.Penalties[f.Severity]
			ds.FindingIndexes = append(ds.FindingIndexes, i)
		}
		if ds.RawPenalty > s.opts.PenaltyCap {
			ds.RawPenalty = s.opts.PenaltyCap
		}
		ds.Value = clamp(100 - ds.RawPenalty/s.opts.PenaltyCap*100)
		report.Dimensions = append(report.Dimensions, ds)
		composite += s.opts.Weights[dim] * ds.Value
	}

	report.Composite = int(clamp(math.Round(composite)))
	report.RiskLevel = s.level(float64(report.Composite))
	report.Recommendations = s.recommend(findings)
	return report
}

// level maps the composite onto the four bands, lower bounds inclusive.
func (s *Scorer) level(composite float64) RiskLevel {
	switch {
	case composite >= s.opts.ThresholdHigh:
		return LevelHigh
	case composite >= s.opts.ThresholdMedium:
		return LevelMedium
	case composite >= s.opts.ThresholdLow:
		return LevelLow
	default:
		return LevelMinimal
	}
}

// recommend picks remediation text of the top-N findings, severity
// descending with dimension order then declaration order as tie-breaks.
// Identical remediation text appears once.
func (s *Scorer) recommend(findings []RiskFinding) []string {
	ranked := make([]RiskFinding, len(findings))
	copy(ranked, findings)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Severity.Rank() != ranked[j].Severity.Rank() {
			return ranked[i].Severity.Rank() > ranked[j].Severity.Rank()
		}
		if ranked[i].Dimension.Order() != ranked[j].Dimension.Order() {
			return ranked[i].Dimension.Order() < ranked[j].Dimension.Order()
		}
		return ranked[i].order < ranked[j].order
	})

	out := make([]string, 0, s.opts.MaxRecommendations)
	seen := make(map[string]bool)
	for _, f := range ranked {
		if f.Remediation == "" || seen[f.Remediation] {
			continue
		}
		seen[f.Remediation] = true
		out = append(out, f.Remediation)
		if len(out) == s.opts.MaxRecommendations {
			break
		}
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
