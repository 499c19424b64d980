package kb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// KnowledgeBase is the immutable reference data every analysis keys off of.
// It is loaded once at startup and shared read-only across reviews.
type KnowledgeBase struct {
	Profiles   []ContractTypeProfile
	Templates  []RiskTemplate
	Checklists []ChecklistItem
	Standards  []ClauseStandard

	profileByID  map[string]int
	templateByID map[string]int
	itemByID     map[string]int
}

// The four tabular sources a knowledge base directory must provide.
const (
	contractTypesFile   = "contract_types.csv"
	riskTemplatesFile   = "risk_templates.csv"
	clauseStandardsFile = "clause_standards.csv"
	checklistsFile      = "review_checklists.csv"
)

var ErrEmptySource = errors.New("knowledge base source has no rows")

// Load reads the four CSV sources from dir. A missing or empty source is a
// fatal initialization error. Malformed rows (bad enums, missing columns)
// are rejected here so type mismatches never surface mid-scan; a risk
// template whose regex fails to compile is kept but marked invalid, and the
// detector skips it with a warning.
func Load(dir string) (*KnowledgeBase, error) {
	profiles, err := loadProfiles(filepath.Join(dir, contractTypesFile))
	if err != nil {
		return nil, fmt.Errorf("load contract types: %w", err)
	}
	templates, err := loadTemplates(filepath.Join(dir, riskTemplatesFile))
	if err != nil {
		return nil, fmt.Errorf("load risk templates: %w", err)
	}
	standards, err := loadStandards(filepath.Join(dir, clauseStandardsFile))
	if err != nil {
		return nil, fmt.Errorf("load clause standards: %w", err)
	}
	checklists, err := loadChecklists(filepath.Join(dir, checklistsFile))
	if err != nil {
		return nil, fmt.Errorf("load review checklists: %w", err)
	}
	return New(profiles, templates, checklists, standards)
}

// New assembles a knowledge base from already-built rows. Tests use this to
// avoid the CSV round trip. Declaration order of the slices is preserved and
// drives classifier tie-breaks.
func New(profiles []ContractTypeProfile, templates []RiskTemplate,
	checklists []ChecklistItem, standards []ClauseStandard) (*KnowledgeBase, error) {

	if len(profiles) == 0 {
		return nil, fmt.Errorf("contract types: %w", ErrEmptySource)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("risk templates: %w", ErrEmptySource)
	}
	if len(checklists) == 0 {
		return nil, fmt.Errorf("review checklists: %w", ErrEmptySource)
	}

	k := &KnowledgeBase{
		Profiles:   profiles,
		Templates:  templates,
		Checklists: checklists,
		Standards:  standards,

		profileByID:  make(map[string]int, len(profiles)),
		templateByID: make(map[string]int, len(templates)),
		itemByID:     make(map[string]int, len(checklists)),
	}

	for i := range k.Profiles {
		p := &k.Profiles[i]
		p.order = i
		if _, dup := k.profileByID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate contract type id %q", p.ID)
		}
		k.profileByID[p.ID] = i
	}
	for i := range k.Templates {
		t := &k.Templates[i]
		t.order = i
		if _, dup := k.templateByID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate risk template id %q", t.ID)
		}
		k.templateByID[t.ID] = i
		if err := t.Pattern.Compile(); err != nil {
			log.Printf("Warning: risk template %s has malformed pattern, it will be skipped: %v", t.ID, err)
		}
	}
	for i := range k.Checklists {
		c := &k.Checklists[i]
		c.order = i
		if _, dup := k.itemByID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate checklist item id %q", c.ID)
		}
		k.itemByID[c.ID] = i
		if err := c.Pattern.Compile(); err != nil {
			log.Printf("Warning: checklist item %s has malformed pattern, it will be skipped: %v", c.ID, err)
		}
	}

	if _, ok := k.profileByID[GenericProfileID]; !ok {
		return nil, fmt.Errorf("contract types must include the %q fallback profile", GenericProfileID)
	}
	return k, nil
}

// Profile returns the profile with the given id.
func (k *KnowledgeBase) Profile(id string) (*ContractTypeProfile, bool) {
	i, ok := k.profileByID[id]
	if !ok {
		return nil, false
	}
	return &k.Profiles[i], true
}

// Generic returns the designated fallback profile.
func (k *KnowledgeBase) Generic() *ContractTypeProfile {
	p, _ := k.Profile(GenericProfileID)
	return p
}

// Template returns the risk template with the given id.
func (k *KnowledgeBase) Template(id string) (*RiskTemplate, bool) {
	i, ok := k.templateByID[id]
	if !ok {
		return nil, false
	}
	return &k.Templates[i], true
}

// ChecklistItem returns the checklist item with the given id.
func (k *KnowledgeBase) ChecklistItem(id string) (*ChecklistItem, bool) {
	i, ok := k.itemByID[id]
	if !ok {
		return nil, false
	}
	return &k.Checklists[i], true
}

// TemplatesFor returns the templates named by the profile, in declaration order.
func (k *KnowledgeBase) TemplatesFor(profile *ContractTypeProfile) []*RiskTemplate {
	out := make([]*RiskTemplate, 0, len(profile.TemplateIDs))
	for _, id := range profile.TemplateIDs {
		if t, ok := k.Template(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// ChecklistFor returns the checklist items named by the profile, in declaration order.
func (k *KnowledgeBase) ChecklistFor(profile *ContractTypeProfile) []*ChecklistItem {
	out := make([]*ChecklistItem, 0, len(profile.ChecklistIDs))
	for _, id := range profile.ChecklistIDs {
		if c, ok := k.ChecklistItem(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// StandardFor returns the clause standard for a clause type and contract id,
// preferring a type-specific row over a generic one.
func (k *KnowledgeBase) StandardFor(clauseType, contractID string) (*ClauseStandard, bool) {
	var generic *ClauseStandard
	for i := range k.Standards {
		s := &k.Standards[i]
		if !strings.EqualFold(s.ClauseType, clauseType) {
			continue
		}
		if len(s.ContractIDs) == 0 {
			if generic == nil {
				generic = s
			}
			continue
		}
		for _, id := range s.ContractIDs {
			if id == contractID {
				return s, true
			}
		}
	}
	if generic != nil {
		return generic, true
	}
	return nil, false
}

// --- CSV loading ---

func readRows(path string, want int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = want
	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, err
	}
	if len(header) != want {
		return nil, fmt.Errorf("expected %d columns, got %d", want, len(header))
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySource
	}
	return rows, nil
}

// splitList splits a ';'-separated CSV cell, dropping empty entries.
func splitList(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// parsePattern decodes a pattern cell. For cross_clause the cell holds the
// two term groups separated by '|'.
func parsePattern(kind, cell string) (Pattern, error) {
	switch PatternKind(strings.ToLower(strings.TrimSpace(kind))) {
	case PatternKeywords:
		terms := splitList(cell)
		if len(terms) == 0 {
			return Pattern{}, fmt.Errorf("keywords pattern needs at least one term")
		}
		return Pattern{Kind: PatternKeywords, Terms: terms}, nil
	case PatternRegex:
		if strings.TrimSpace(cell) == "" {
			return Pattern{}, fmt.Errorf("regex pattern needs an expression")
		}
		return Pattern{Kind: PatternRegex, Expr: strings.TrimSpace(cell)}, nil
	case PatternCrossClause:
		groups := strings.SplitN(cell, "|", 2)
		if len(groups) != 2 {
			return Pattern{}, fmt.Errorf("cross_clause pattern needs two '|'-separated groups")
		}
		a, b := splitList(groups[0]), splitList(groups[1])
		if len(a) == 0 || len(b) == 0 {
			return Pattern{}, fmt.Errorf("cross_clause pattern groups must be non-empty")
		}
		return Pattern{Kind: PatternCrossClause, GroupA: a, GroupB: b}, nil
	}
	return Pattern{}, fmt.Errorf("unknown pattern kind: %q", kind)
}

// contract_types.csv: id,name,category,keywords,structural_cues,template_ids,checklist_ids,core_risks
func loadProfiles(path string) ([]ContractTypeProfile, error) {
	rows, err := readRows(path, 8)
	if err != nil {
		return nil, err
	}
	out := make([]ContractTypeProfile, 0, len(rows))
	for n, row := range rows {
		cat, err := ParseCategory(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		p := ContractTypeProfile{
			ID:             strings.TrimSpace(row[0]),
			Name:           strings.TrimSpace(row[1]),
			Category:       cat,
			Keywords:       splitList(row[3]),
			StructuralCues: splitList(row[4]),
			TemplateIDs:    splitList(row[5]),
			ChecklistIDs:   splitList(row[6]),
			CoreRisks:      strings.TrimSpace(row[7]),
		}
		if p.ID == "" {
			return nil, fmt.Errorf("row %d: empty contract type id", n+2)
		}
		if p.ID != GenericProfileID && p.SignatureSize() == 0 {
			return nil, fmt.Errorf("row %d: contract type %s has an empty signature", n+2, p.ID)
		}
		out = append(out, p)
	}
	return out, nil
}

// risk_templates.csv: id,name,pattern_kind,pattern,severity,dimension,layer,stage,critical,doc_level,remediation
func loadTemplates(path string) ([]RiskTemplate, error) {
	rows, err := readRows(path, 11)
	if err != nil {
		return nil, err
	}
	out := make([]RiskTemplate, 0, len(rows))
	for n, row := range rows {
		pat, err := parsePattern(row[2], row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		sev, err := ParseSeverity(row[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		dim, err := ParseDimension(row[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		layer, err := ParseLayer(row[6])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		stage, err := ParseStage(row[7])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		t := RiskTemplate{
			ID:          strings.TrimSpace(row[0]),
			Name:        strings.TrimSpace(row[1]),
			Pattern:     pat,
			Severity:    sev,
			Dimension:   dim,
			Layer:       layer,
			Stage:       stage,
			Critical:    parseBool(row[8]),
			DocLevel:    parseBool(row[9]),
			Remediation: strings.TrimSpace(row[10]),
		}
		if t.ID == "" {
			return nil, fmt.Errorf("row %d: empty risk template id", n+2)
		}
		out = append(out, t)
	}
	return out, nil
}

// clause_standards.csv: clause_type,contract_ids,key_elements,template
func loadStandards(path string) ([]ClauseStandard, error) {
	rows, err := readRows(path, 4)
	if err != nil {
		return nil, err
	}
	out := make([]ClauseStandard, 0, len(rows))
	for n, row := range rows {
		s := ClauseStandard{
			ClauseType:  strings.TrimSpace(row[0]),
			ContractIDs: splitList(row[1]),
			KeyElements: splitList(row[2]),
			Template:    strings.TrimSpace(row[3]),
		}
		if s.ClauseType == "" {
			return nil, fmt.Errorf("row %d: empty clause type", n+2)
		}
		out = append(out, s)
	}
	return out, nil
}

// review_checklists.csv: id,description,layer,stage,pattern_kind,pattern,mandatory,criticality,dimension,remediation
func loadChecklists(path string) ([]ChecklistItem, error) {
	rows, err := readRows(path, 10)
	if err != nil {
		return nil, err
	}
	out := make([]ChecklistItem, 0, len(rows))
	for n, row := range rows {
		layer, err := ParseLayer(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		stage, err := ParseStage(row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		pat, err := parsePattern(row[4], row[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		crit, err := ParseSeverity(row[7])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		dim, err := ParseDimension(row[8])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		c := ChecklistItem{
			ID:          strings.TrimSpace(row[0]),
			Description: strings.TrimSpace(row[1]),
			Layer:       layer,
			Stage:       stage,
			Pattern:     pat,
			Mandatory:   parseBool(row[6]),
			Criticality: crit,
			Dimension:   dim,
			Remediation: strings.TrimSpace(row[9]),
		}
		if c.ID == "" {
			return nil, fmt.Errorf("row %d: empty checklist item id", n+2)
		}
		out = append(out, c)
	}
	return out, nil
}
