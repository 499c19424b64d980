package kb

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity is the four-tier criticality taxonomy, ordered fatal > major > general > minor.
type Severity string

const (
	SeverityFatal   Severity = "fatal"
	SeverityMajor   Severity = "major"
	SeverityGeneral Severity = "general"
	SeverityMinor   Severity = "minor"
)

// Severities lists all tiers in descending criticality.
var Severities = []Severity{SeverityFatal, SeverityMajor, SeverityGeneral, SeverityMinor}

// Rank returns a sortable weight, higher means more critical.
func (s Severity) Rank() int {
	switch s {
	case SeverityFatal:
		return 4
	case SeverityMajor:
		return 3
	case SeverityGeneral:
		return 2
	case SeverityMinor:
		return 1
	}
	return 0
}

func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityFatal:
		return SeverityFatal, nil
	case SeverityMajor:
		return SeverityMajor, nil
	case SeverityGeneral:
		return SeverityGeneral, nil
	case SeverityMinor:
		return SeverityMinor, nil
	}
	return "", fmt.Errorf("unknown severity: %q", s)
}

// Dimension is one of the three scoring axes.
type Dimension string

const (
	DimensionBusiness  Dimension = "business"
	DimensionLegal     Dimension = "legal"
	DimensionPractical Dimension = "practical"
)

// Dimensions lists the axes in report order. This order is also the
// tie-break order for recommendations.
var Dimensions = []Dimension{DimensionBusiness, DimensionLegal, DimensionPractical}

// Order returns the position of the dimension in report order.
func (d Dimension) Order() int {
	switch d {
	case DimensionBusiness:
		return 0
	case DimensionLegal:
		return 1
	case DimensionPractical:
		return 2
	}
	return 3
}

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(strings.ToLower(strings.TrimSpace(s))) {
	case DimensionBusiness:
		return DimensionBusiness, nil
	case DimensionLegal:
		return DimensionLegal, nil
	case DimensionPractical:
		return DimensionPractical, nil
	}
	return "", fmt.Errorf("unknown dimension: %q", s)
}

// Layer is the structural level a template or checklist item speaks to:
// macro (transaction structure), meso (contract form), micro (clause language).
type Layer string

const (
	LayerMacro Layer = "macro"
	LayerMeso  Layer = "meso"
	LayerMicro Layer = "micro"
)

var Layers = []Layer{LayerMacro, LayerMeso, LayerMicro}

func ParseLayer(s string) (Layer, error) {
	switch Layer(strings.ToLower(strings.TrimSpace(s))) {
	case LayerMacro:
		return LayerMacro, nil
	case LayerMeso:
		return LayerMeso, nil
	case LayerMicro:
		return LayerMicro, nil
	}
	return "", fmt.Errorf("unknown layer: %q", s)
}

// Stage is one step of the four-step review narrative.
type Stage string

const (
	StageUnderstand Stage = "understand_transaction"
	StageStructure  Stage = "design_structure"
	StageDraft      Stage = "draft_contract"
	StageReview     Stage = "review_refine"
)

var Stages = []Stage{StageUnderstand, StageStructure, StageDraft, StageReview}

func ParseStage(s string) (Stage, error) {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StageUnderstand:
		return StageUnderstand, nil
	case StageStructure:
		return StageStructure, nil
	case StageDraft:
		return StageDraft, nil
	case StageReview:
		return StageReview, nil
	}
	return "", fmt.Errorf("unknown stage: %q", s)
}

// Category is the top-level contract family.
type Category string

const (
	CategoryProperty     Category = "property"
	CategoryService      Category = "service"
	CategoryCorporate    Category = "corporate"
	CategoryFinancial    Category = "financial"
	CategoryLabor        Category = "labor"
	CategoryTechnical    Category = "technical"
	CategoryConstruction Category = "construction"
	CategoryOther        Category = "other"
)

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryProperty, CategoryService, CategoryCorporate, CategoryFinancial,
		CategoryLabor, CategoryTechnical, CategoryConstruction, CategoryOther:
		return Category(strings.ToLower(strings.TrimSpace(s))), nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// PatternKind selects the matching rule variant.
type PatternKind string

const (
	// PatternKeywords matches when every term in Terms appears in the text.
	PatternKeywords PatternKind = "keywords"
	// PatternRegex matches when the compiled expression matches the text.
	PatternRegex PatternKind = "regex"
	// PatternCrossClause matches when the two term groups each match a
	// clause and at least two distinct clauses are involved.
	PatternCrossClause PatternKind = "cross_clause"
)

// Pattern is the tagged-variant matching rule attached to risk templates
// and checklist items. Matching is case-insensitive.
type Pattern struct {
	Kind  PatternKind `json:"kind"`
	Terms []string    `json:"terms,omitempty"` // keywords kind
	Expr  string      `json:"expr,omitempty"`  // regex kind

	// cross_clause kind: both groups must hit, on different clauses
	GroupA []string `json:"group_a,omitempty"`
	GroupB []string `json:"group_b,omitempty"`

	re       *regexp.Regexp
	compiled bool
	bad      bool
}

// Compile prepares the regex variant. A failed compile marks the pattern
// invalid rather than erroring: detection skips it per-template instead of
// aborting the run.
func (p *Pattern) Compile() error {
	p.compiled = true
	if p.Kind != PatternRegex {
		return nil
	}
	re, err := regexp.Compile("(?i)" + p.Expr)
	if err != nil {
		p.bad = true
		return fmt.Errorf("pattern %q: %w", p.Expr, err)
	}
	p.re = re
	return nil
}

// Valid reports whether the pattern can be evaluated.
func (p *Pattern) Valid() bool {
	if p.bad {
		return false
	}
	switch p.Kind {
	case PatternKeywords:
		return len(p.Terms) > 0
	case PatternRegex:
		return p.re != nil
	case PatternCrossClause:
		return len(p.GroupA) > 0 && len(p.GroupB) > 0
	}
	return false
}

// MatchText evaluates the keyword or regex variant against a single text.
// Cross-clause patterns never match a single text.
func (p *Pattern) MatchText(text string) bool {
	switch p.Kind {
	case PatternKeywords:
		lower := strings.ToLower(text)
		for _, term := range p.Terms {
			if !strings.Contains(lower, strings.ToLower(term)) {
				return false
			}
		}
		return len(p.Terms) > 0
	case PatternRegex:
		if p.re == nil {
			return false
		}
		return p.re.MatchString(text)
	}
	return false
}

// MatchAny reports whether at least one term of a keywords pattern appears.
// Used for the "partial" checklist status.
func (p *Pattern) MatchAny(text string) bool {
	if p.Kind == PatternRegex {
		return p.MatchText(text)
	}
	lower := strings.ToLower(text)
	for _, term := range p.Terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// MatchAnyTerm reports whether any of terms appears in text, case-insensitive.
func MatchAnyTerm(terms []string, text string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// ContractTypeProfile describes one recognizable contract family: its
// matching signature and the template/checklist subsets that apply to it.
type ContractTypeProfile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       Category `json:"category"`
	Keywords       []string `json:"keywords"`        // signature keyword set
	StructuralCues []string `json:"structural_cues"` // expected headings
	TemplateIDs    []string `json:"template_ids"`
	ChecklistIDs   []string `json:"checklist_ids"`
	CoreRisks      string   `json:"core_risks,omitempty"`

	order int // declaration order, classifier tie-break
}

// Order returns the declaration position in the knowledge base.
func (p *ContractTypeProfile) Order() int { return p.order }

// SignatureSize is the denominator of the classifier confidence.
func (p *ContractTypeProfile) SignatureSize() int {
	return len(p.Keywords) + len(p.StructuralCues)
}

// GenericProfileID names the fallback profile every knowledge base must carry.
const GenericProfileID = "general"

// RiskTemplate is one reusable detection rule.
type RiskTemplate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Pattern     Pattern   `json:"pattern"`
	Severity    Severity  `json:"severity"`
	Dimension   Dimension `json:"dimension"`
	Layer       Layer     `json:"layer"`
	Stage       Stage     `json:"stage"`
	Critical    bool      `json:"critical"`  // include at quick depth regardless of severity
	DocLevel    bool      `json:"doc_level"` // scan the whole document, not per clause
	Remediation string    `json:"remediation"`

	order int
}

func (t *RiskTemplate) Order() int { return t.order }

// CrossClause reports whether the template only activates at deep depth.
func (t *RiskTemplate) CrossClause() bool { return t.Pattern.Kind == PatternCrossClause }

// ChecklistItem is one expected structural element for a contract family.
type ChecklistItem struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Layer       Layer     `json:"layer"`
	Stage       Stage     `json:"stage"`
	Pattern     Pattern   `json:"pattern"` // full-satisfaction pattern
	Mandatory   bool      `json:"mandatory"`
	Criticality Severity  `json:"criticality"` // escalation severity when missing
	Dimension   Dimension `json:"dimension"`   // escalated finding dimension
	Remediation string    `json:"remediation"`

	order int
}

func (c *ChecklistItem) Order() int { return c.order }

// ClauseStandard carries the reference wording for a clause type, used by
// the rendering collaborator as suggested replacement text.
type ClauseStandard struct {
	ClauseType  string   `json:"clause_type"`
	ContractIDs []string `json:"contract_ids"` // empty means applicable to all
	KeyElements []string `json:"key_elements"`
	Template    string   `json:"template"`
}
