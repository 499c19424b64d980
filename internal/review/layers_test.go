package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericksa/contractreview/internal/kb"
)

func TestAnalyzer_QuickSkipsAnalysis(t *testing.T) {
	a := NewAnalyzer(3)
	assert.Nil(t, a.Organize(DepthQuick, []RiskFinding{{TemplateID: "x"}}, nil))
}

func TestAnalyzer_GroupsByLayerAndStage(t *testing.T) {
	a := NewAnalyzer(3)

	findings := []RiskFinding{
		{TemplateID: "f1", Severity: kb.SeverityFatal, Layer: kb.LayerMeso, Stage: kb.StageStructure, Remediation: "cap liability"},
		{TemplateID: "f2", Severity: kb.SeverityMajor, Layer: kb.LayerMicro, Stage: kb.StageDraft, Remediation: "fix wording"},
		{TemplateID: "f3", Severity: kb.SeverityGeneral, Layer: kb.LayerMeso, Stage: kb.StageReview, Remediation: "add opt-out"},
	}
	checklist := []ChecklistResult{
		{ItemID: "c1", Layer: kb.LayerMacro, Status: StatusMissing},
		{ItemID: "c2", Layer: kb.LayerMeso, Status: StatusSatisfied},
	}

	analysis := a.Organize(DepthStandard, findings, checklist)
	require.NotNil(t, analysis)
	require.Len(t, analysis.Layers, len(kb.Layers))
	require.Len(t, analysis.Stages, len(kb.Stages))

	assert.Equal(t, kb.LayerMacro, analysis.Layers[0].Layer)
	assert.Empty(t, analysis.Layers[0].Findings)
	require.Len(t, analysis.Layers[0].Checklist, 1)
	assert.Equal(t, "c1", analysis.Layers[0].Checklist[0].ItemID)

	meso := analysis.Layers[1]
	require.Len(t, meso.Findings, 2)
	assert.Equal(t, "f1", meso.Findings[0].TemplateID)
	assert.Equal(t, []string{"cap liability", "add opt-out"}, meso.Narrative)

	micro := analysis.Layers[2]
	require.Len(t, micro.Findings, 1)
	assert.Equal(t, "f2", micro.Findings[0].TemplateID)

	assert.Equal(t, kb.StageUnderstand, analysis.Stages[0].Stage)
	assert.Empty(t, analysis.Stages[0].Findings)
	require.Len(t, analysis.Stages[1].Findings, 1)
	assert.Equal(t, "f1", analysis.Stages[1].Findings[0].TemplateID)
}

func TestAnalyzer_NarrativeCapAndDedup(t *testing.T) {
	a := NewAnalyzer(2)

	findings := []RiskFinding{
		{Severity: kb.SeverityFatal, Layer: kb.LayerMicro, Stage: kb.StageDraft, Remediation: "same advice"},
		{Severity: kb.SeverityMajor, Layer: kb.LayerMicro, Stage: kb.StageDraft, Remediation: "same advice"},
		{Severity: kb.SeverityGeneral, Layer: kb.LayerMicro, Stage: kb.StageDraft, Remediation: "second advice"},
		{Severity: kb.SeverityMinor, Layer: kb.LayerMicro, Stage: kb.StageDraft, Remediation: "never reached"},
	}

	analysis := a.Organize(DepthStandard, findings, nil)
	require.NotNil(t, analysis)
	micro := analysis.Layers[2]
	assert.Equal(t, []string{"same advice", "second advice"}, micro.Narrative)
}
