package review

import (
	"log"

	"github.com/ericksa/contractreview/internal/kb"
)

// Reviewer checks checklist coverage for the identified contract type and
// escalates missing mandatory items into findings so absence is scored the
// same way as detected risk.
type Reviewer struct {
	kb *kb.KnowledgeBase
}

func NewReviewer(base *kb.KnowledgeBase) *Reviewer {
	return &Reviewer{kb: base}
}

// Review returns one ChecklistResult per applicable item, in declaration
// order, plus escalation findings for missing mandatory items.
func (r *Reviewer) Review(doc *Document, profile *kb.ContractTypeProfile) ([]ChecklistResult, []RiskFinding) {
	items := r.kb.ChecklistFor(profile)

	results := make([]ChecklistResult, 0, len(items))
	var escalated []RiskFinding
	for _, item := range items {
		if !item.Pattern.Valid() {
			log.Printf("reviewer: skipping checklist item %s: unusable pattern", item.ID)
			continue
		}

		res := r.check(doc, item)
		results = append(results, res)

		if res.Status == StatusMissing && item.Mandatory {
			escalated = append(escalated, RiskFinding{
				TemplateID:  item.ID,
				Name:        item.Description,
				ClauseIndex: DocumentLevel,
				Severity:    item.Criticality,
				Dimension:   item.Dimension,
				Layer:       item.Layer,
				Stage:       item.Stage,
				Remediation: item.Remediation,
				Source:      SourceChecklist,
				order:       item.Order(),
			})
		}
	}
	return results, escalated
}

// check searches the clauses for the item's expected element. A full pattern
// match on some clause is satisfied; a partial match (at least one term
// present but not all) is partial; otherwise missing.
func (r *Reviewer) check(doc *Document, item *kb.ChecklistItem) ChecklistResult {
	res := ChecklistResult{
		ItemID:      item.ID,
		Description: item.Description,
		Status:      StatusMissing,
		ClauseIndex: DocumentLevel,
		Mandatory:   item.Mandatory,
		Layer:       item.Layer,
		Remediation: item.Remediation,
	}

	partialAt := DocumentLevel
	for i := range doc.Clauses {
		text := doc.Clauses[i].Heading + "\n" + doc.Clauses[i].Text
		if item.Pattern.MatchText(text) {
			res.Status = StatusSatisfied
			res.ClauseIndex = i
			return res
		}
		if partialAt == DocumentLevel && item.Pattern.MatchAny(text) {
			partialAt = i
		}
	}

	if partialAt != DocumentLevel {
		res.Status = StatusPartial
		res.ClauseIndex = partialAt
	}
	return res
}
