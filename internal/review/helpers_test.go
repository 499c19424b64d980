package review

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericksa/contractreview/internal/kb"
)

// newTestKB builds the small in-memory knowledge base shared by the
// classifier, detector, reviewer and pipeline tests.
func newTestKB(t *testing.T) *kb.KnowledgeBase {
	t.Helper()

	profiles := []kb.ContractTypeProfile{
		{
			ID:             "sale",
			Name:           "Sale of Goods Contract",
			Category:       kb.CategoryProperty,
			Keywords:       []string{"goods", "buyer", "seller", "purchase"},
			StructuralCues: []string{"price", "delivery"},
			TemplateIDs: []string{
				"rt_quality", "rt_liability", "rt_renewal",
				"rt_deposit", "rt_placeholder", "rt_broken",
			},
			ChecklistIDs: []string{"payment_schedule", "governing_law", "notice"},
		},
		{
			ID:           kb.GenericProfileID,
			Name:         "General Contract",
			Category:     kb.CategoryOther,
			TemplateIDs:  []string{"rt_liability"},
			ChecklistIDs: []string{"governing_law"},
		},
	}

	templates := []kb.RiskTemplate{
		{
			ID: "rt_quality", Name: "Unspecified quality standard",
			Pattern:  kb.Pattern{Kind: kb.PatternKeywords, Terms: []string{"unspecified quality standard"}},
			Severity: kb.SeverityMajor, Dimension: kb.DimensionLegal,
			Layer: kb.LayerMicro, Stage: kb.StageDraft,
			Remediation: "Define an explicit quality standard",
		},
		{
			ID: "rt_liability", Name: "Unlimited liability exposure",
			Pattern:  kb.Pattern{Kind: kb.PatternKeywords, Terms: []string{"unlimited liability"}},
			Severity: kb.SeverityFatal, Dimension: kb.DimensionLegal,
			Layer: kb.LayerMeso, Stage: kb.StageStructure, Critical: true,
			Remediation: "Cap aggregate liability",
		},
		{
			ID: "rt_renewal", Name: "Automatic renewal without opt-out",
			Pattern:  kb.Pattern{Kind: kb.PatternKeywords, Terms: []string{"automatically renew"}},
			Severity: kb.SeverityGeneral, Dimension: kb.DimensionPractical,
			Layer: kb.LayerMeso, Stage: kb.StageReview,
			Remediation: "Add a renewal opt-out window",
		},
		{
			ID: "rt_deposit", Name: "Deposit forfeiture conflict",
			Pattern: kb.Pattern{
				Kind:   kb.PatternCrossClause,
				GroupA: []string{"deposit"},
				GroupB: []string{"non-refundable"},
			},
			Severity: kb.SeverityMajor, Dimension: kb.DimensionBusiness,
			Layer: kb.LayerMacro, Stage: kb.StageUnderstand,
			Remediation: "Align the deposit terms with the refund provisions",
		},
		{
			ID: "rt_placeholder", Name: "Unresolved drafting placeholder",
			Pattern:  kb.Pattern{Kind: kb.PatternRegex, Expr: `\[(insert|tbd)[^\]]*\]`},
			Severity: kb.SeverityGeneral, Dimension: kb.DimensionPractical,
			Layer: kb.LayerMicro, Stage: kb.StageReview, DocLevel: true,
			Remediation: "Remove drafting placeholders",
		},
		{
			ID: "rt_broken", Name: "Broken rule",
			Pattern:  kb.Pattern{Kind: kb.PatternRegex, Expr: "(["},
			Severity: kb.SeverityFatal, Dimension: kb.DimensionLegal,
			Layer: kb.LayerMicro, Stage: kb.StageDraft,
			Remediation: "Should never appear",
		},
	}

	checklists := []kb.ChecklistItem{
		{
			ID: "payment_schedule", Description: "Payment amount and schedule are specified",
			Layer: kb.LayerMeso, Stage: kb.StageDraft,
			Pattern:   kb.Pattern{Kind: kb.PatternKeywords, Terms: []string{"payment", "schedule"}},
			Mandatory: true, Criticality: kb.SeverityGeneral, Dimension: kb.DimensionPractical,
			Remediation: "Add a payment schedule with due dates",
		},
		{
			ID: "governing_law", Description: "Governing law is designated",
			Layer: kb.LayerMacro, Stage: kb.StageUnderstand,
			Pattern:   kb.Pattern{Kind: kb.PatternKeywords, Terms: []string{"governing law"}},
			Mandatory: true, Criticality: kb.SeverityGeneral, Dimension: kb.DimensionLegal,
			Remediation: "Designate the governing law",
		},
		{
			ID: "notice", Description: "Notice addresses and method are defined",
			Layer: kb.LayerMicro, Stage: kb.StageReview,
			Pattern:   kb.Pattern{Kind: kb.PatternKeywords, Terms: []string{"notices", "address"}},
			Mandatory: false, Criticality: kb.SeverityMinor, Dimension: kb.DimensionPractical,
			Remediation: "Add a notices clause",
		},
	}

	standards := []kb.ClauseStandard{
		{
			ClauseType:  "payment_schedule",
			KeyElements: []string{"amount", "due dates"},
			Template:    "The buyer shall pay in agreed installments on the scheduled dates.",
		},
	}

	base, err := kb.New(profiles, templates, checklists, standards)
	require.NoError(t, err)
	return base
}

func mustIngest(t *testing.T, name, raw string) *Document {
	t.Helper()
	doc, err := Ingest(name, raw)
	require.NoError(t, err)
	return doc
}
