package review

import (
	"fmt"
	"strings"

	"github.com/ericksa/contractreview/internal/kb"
)

// Depth selects how thorough a review run is.
type Depth string

const (
	// DepthQuick restricts detection to fatal/major and flagged-critical
	// templates and skips the layered analysis.
	DepthQuick Depth = "quick"
	// DepthStandard runs the full type-applicable template set.
	DepthStandard Depth = "standard"
	// DepthDeep additionally activates cross-clause correlation templates.
	DepthDeep Depth = "deep"
)

// Depths lists the supported review depths.
var Depths = []Depth{DepthQuick, DepthStandard, DepthDeep}

// ErrUnknownDepth is returned for depth values outside the supported set.
var ErrUnknownDepth = fmt.Errorf("unknown review depth")

// ParseDepth validates a depth selector. Empty input means standard.
func ParseDepth(s string) (Depth, error) {
	switch Depth(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DepthStandard, nil
	case DepthQuick:
		return DepthQuick, nil
	case DepthStandard:
		return DepthStandard, nil
	case DepthDeep:
		return DepthDeep, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDepth, s)
}

// Position is the represented party's relative bargaining position.
type Position string

const (
	PositionStrong Position = "strong"
	PositionEqual  Position = "equal"
	PositionWeak   Position = "weak"
)

// Context carries optional review framing. It never changes matching logic,
// only how rendered recommendations are worded.
type Context struct {
	Party    string   `json:"party,omitempty"`
	Position Position `json:"position,omitempty"`
	History  string   `json:"history,omitempty"`
	Focus    string   `json:"focus,omitempty"`
}

// ContextFromMap builds a Context from loose key/value input. Unknown keys
// are ignored, an unrecognized position value is rejected.
func ContextFromMap(m map[string]string) (Context, error) {
	var c Context
	for k, v := range m {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "party":
			c.Party = v
		case "position":
			switch Position(strings.ToLower(strings.TrimSpace(v))) {
			case "":
			case PositionStrong:
				c.Position = PositionStrong
			case PositionEqual:
				c.Position = PositionEqual
			case PositionWeak:
				c.Position = PositionWeak
			default:
				return Context{}, fmt.Errorf("unknown position: %q", v)
			}
		case "history":
			c.History = v
		case "focus":
			c.Focus = v
		}
	}
	return c, nil
}

// DocumentLevel is the clause index of findings not tied to one clause.
const DocumentLevel = -1

// FindingSource records which analyzer produced a finding.
type FindingSource string

const (
	// SourceDetected findings come from risk template matches.
	SourceDetected FindingSource = "detected"
	// SourceChecklist findings are escalations of missing mandatory items.
	SourceChecklist FindingSource = "checklist"
)

// RiskFinding is one matched risk. Severity, dimension, layer and stage are
// copied verbatim from the source template or checklist item.
type RiskFinding struct {
	TemplateID  string        `json:"template_id"`
	Name        string        `json:"name"`
	ClauseIndex int           `json:"clause_index"` // DocumentLevel when not clause-specific
	Severity    kb.Severity   `json:"severity"`
	Dimension   kb.Dimension  `json:"dimension"`
	Layer       kb.Layer      `json:"layer"`
	Stage       kb.Stage      `json:"stage"`
	Remediation string        `json:"remediation"`
	Source      FindingSource `json:"source"`

	order int // source template/item declaration order, tie-break only
}

// ChecklistStatus is the coverage verdict for one checklist item.
type ChecklistStatus string

const (
	StatusSatisfied ChecklistStatus = "satisfied"
	StatusPartial   ChecklistStatus = "partial"
	StatusMissing   ChecklistStatus = "missing"
)

// ChecklistResult reports coverage of one expected element. ClauseIndex is
// the evidence clause for satisfied/partial, DocumentLevel for missing.
type ChecklistResult struct {
	ItemID      string          `json:"item_id"`
	Description string          `json:"description"`
	Status      ChecklistStatus `json:"status"`
	ClauseIndex int             `json:"clause_index"`
	Mandatory   bool            `json:"mandatory"`
	Layer       kb.Layer        `json:"layer"`
	Remediation string          `json:"remediation,omitempty"`
}
