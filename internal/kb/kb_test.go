package kb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfiles() []ContractTypeProfile {
	return []ContractTypeProfile{
		{
			ID:           "sale",
			Name:         "Sale of Goods",
			Category:     CategoryProperty,
			Keywords:     []string{"sale", "goods"},
			TemplateIDs:  []string{"rt_liability"},
			ChecklistIDs: []string{"governing_law"},
		},
		{ID: GenericProfileID, Name: "General", Category: CategoryOther},
	}
}

func validTemplates() []RiskTemplate {
	return []RiskTemplate{
		{
			ID:        "rt_liability",
			Name:      "Unlimited liability",
			Pattern:   Pattern{Kind: PatternKeywords, Terms: []string{"unlimited liability"}},
			Severity:  SeverityFatal,
			Dimension: DimensionLegal,
			Layer:     LayerMeso,
			Stage:     StageStructure,
		},
	}
}

func validChecklists() []ChecklistItem {
	return []ChecklistItem{
		{
			ID:          "governing_law",
			Description: "Governing law designated",
			Layer:       LayerMacro,
			Stage:       StageUnderstand,
			Pattern:     Pattern{Kind: PatternKeywords, Terms: []string{"governing law"}},
			Mandatory:   true,
			Criticality: SeverityGeneral,
			Dimension:   DimensionLegal,
		},
	}
}

func TestNew_Valid(t *testing.T) {
	k, err := New(validProfiles(), validTemplates(), validChecklists(), nil)
	require.NoError(t, err)

	p, ok := k.Profile("sale")
	require.True(t, ok)
	assert.Equal(t, 0, p.Order())
	assert.Equal(t, GenericProfileID, k.Generic().ID)

	tmpl, ok := k.Template("rt_liability")
	require.True(t, ok)
	assert.True(t, tmpl.Pattern.Valid())
}

func TestNew_EmptySources(t *testing.T) {
	_, err := New(nil, validTemplates(), validChecklists(), nil)
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = New(validProfiles(), nil, validChecklists(), nil)
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = New(validProfiles(), validTemplates(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestNew_RequiresGenericProfile(t *testing.T) {
	profiles := validProfiles()[:1]
	_, err := New(profiles, validTemplates(), validChecklists(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), GenericProfileID)
}

func TestNew_DuplicateTemplateID(t *testing.T) {
	templates := append(validTemplates(), validTemplates()...)
	_, err := New(validProfiles(), templates, validChecklists(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNew_MalformedRegexKeptButInvalid(t *testing.T) {
	templates := append(validTemplates(), RiskTemplate{
		ID:        "rt_bad",
		Name:      "Broken pattern",
		Pattern:   Pattern{Kind: PatternRegex, Expr: "(["},
		Severity:  SeverityMinor,
		Dimension: DimensionPractical,
		Layer:     LayerMicro,
		Stage:     StageReview,
	})

	k, err := New(validProfiles(), templates, validChecklists(), nil)
	require.NoError(t, err)

	bad, ok := k.Template("rt_bad")
	require.True(t, ok)
	assert.False(t, bad.Pattern.Valid())
	assert.False(t, bad.Pattern.MatchText("anything"))
}

func TestPattern_KeywordsMatchAllTerms(t *testing.T) {
	p := Pattern{Kind: PatternKeywords, Terms: []string{"assign", "without consent"}}
	require.NoError(t, p.Compile())

	assert.True(t, p.MatchText("may ASSIGN this contract without consent of the other party"))
	assert.False(t, p.MatchText("may assign this contract with prior approval"))
	assert.True(t, p.MatchAny("may assign this contract with prior approval"))
}

func TestPattern_RegexCaseInsensitive(t *testing.T) {
	p := Pattern{Kind: PatternRegex, Expr: `penalty of \d{2,}\s*%`}
	require.NoError(t, p.Compile())

	assert.True(t, p.MatchText("a Penalty of 30% applies"))
	assert.False(t, p.MatchText("a penalty of 5% applies"))
}

func TestStandardFor_PrefersTypeSpecific(t *testing.T) {
	standards := []ClauseStandard{
		{ClauseType: "warranty", KeyElements: []string{"scope"}, Template: "generic wording"},
		{ClauseType: "warranty", ContractIDs: []string{"sale"}, Template: "sale wording"},
	}
	k, err := New(validProfiles(), validTemplates(), validChecklists(), standards)
	require.NoError(t, err)

	s, ok := k.StandardFor("warranty", "sale")
	require.True(t, ok)
	assert.Equal(t, "sale wording", s.Template)

	s, ok = k.StandardFor("warranty", "lease")
	require.True(t, ok)
	assert.Equal(t, "generic wording", s.Template)

	_, ok = k.StandardFor("unknown", "sale")
	assert.False(t, ok)
}

func writeKBFiles(t *testing.T, dir string, overrides map[string]string) {
	t.Helper()
	files := map[string]string{
		contractTypesFile: "id,name,category,keywords,structural_cues,template_ids,checklist_ids,core_risks\n" +
			"sale,Sale of Goods,property,sale;goods,price,rt_liability,governing_law,\n" +
			"general,General,other,,,rt_liability,governing_law,\n",
		riskTemplatesFile: "id,name,pattern_kind,pattern,severity,dimension,layer,stage,critical,doc_level,remediation\n" +
			"rt_liability,Unlimited liability,keywords,unlimited liability,fatal,legal,meso,design_structure,true,false,Cap liability\n",
		clauseStandardsFile: "clause_type,contract_ids,key_elements,template\n" +
			"warranty,,scope;period,Standard warranty wording\n",
		checklistsFile: "id,description,layer,stage,pattern_kind,pattern,mandatory,criticality,dimension,remediation\n" +
			"governing_law,Governing law designated,macro,understand_transaction,keywords,governing law,true,general,legal,Designate governing law\n",
	}
	for name, content := range files {
		if o, ok := overrides[name]; ok {
			content = o
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestLoad_FromCSV(t *testing.T) {
	dir := t.TempDir()
	writeKBFiles(t, dir, nil)

	k, err := Load(dir)
	require.NoError(t, err)

	assert.Len(t, k.Profiles, 2)
	assert.Len(t, k.Templates, 1)
	assert.Len(t, k.Checklists, 1)
	assert.Len(t, k.Standards, 1)

	sale, ok := k.Profile("sale")
	require.True(t, ok)
	assert.Equal(t, []string{"sale", "goods"}, sale.Keywords)
	assert.Len(t, k.TemplatesFor(sale), 1)
	assert.Len(t, k.ChecklistFor(sale), 1)
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeKBFiles(t, dir, nil)
	require.NoError(t, os.Remove(filepath.Join(dir, riskTemplatesFile)))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_HeaderOnlyIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeKBFiles(t, dir, map[string]string{
		checklistsFile: "id,description,layer,stage,pattern_kind,pattern,mandatory,criticality,dimension,remediation\n",
	})

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestLoad_BadEnumIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeKBFiles(t, dir, map[string]string{
		riskTemplatesFile: "id,name,pattern_kind,pattern,severity,dimension,layer,stage,critical,doc_level,remediation\n" +
			"rt_liability,Unlimited liability,keywords,unlimited liability,catastrophic,legal,meso,design_structure,true,false,Cap liability\n",
	})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "severity")
}

func TestParsePattern_CrossClauseGroups(t *testing.T) {
	p, err := parsePattern("cross_clause", "deposit;advance|non-refundable;forfeited")
	require.NoError(t, err)
	assert.Equal(t, PatternCrossClause, p.Kind)
	assert.Equal(t, []string{"deposit", "advance"}, p.GroupA)
	assert.Equal(t, []string{"non-refundable", "forfeited"}, p.GroupB)

	_, err = parsePattern("cross_clause", "deposit only")
	assert.Error(t, err)

	_, err = parsePattern("telepathy", "whatever")
	assert.Error(t, err)
}
