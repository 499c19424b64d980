package review

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/ericksa/contractreview/internal/kb"
)

// Detector scans a document against the risk templates applicable to the
// identified profile. Per-template scans are independent, so they fan out
// over a bounded worker pool and collect into one deterministically ordered
// finding list.
type Detector struct {
	kb          *kb.KnowledgeBase
	maxParallel int
}

func NewDetector(base *kb.KnowledgeBase, maxParallel int) *Detector {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &Detector{kb: base, maxParallel: maxParallel}
}

// Detect returns findings ordered by severity descending, then document
// order, then template declaration order. A template with an unusable
// pattern is logged and skipped without aborting the run.
func (d *Detector) Detect(ctx context.Context, doc *Document, profile *kb.ContractTypeProfile, depth Depth) []RiskFinding {
	templates := d.active(profile, depth)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		findings []RiskFinding
	)
	sem := make(chan struct{}, d.maxParallel)

	for _, tmpl := range templates {
		if ctx.Err() != nil {
			break
		}
		if !tmpl.Pattern.Valid() {
			log.Printf("detector: skipping template %s: unusable pattern", tmpl.ID)
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(t *kb.RiskTemplate) {
			defer wg.Done()
			defer func() { <-sem }()
			hits := d.scan(doc, t)
			if len(hits) == 0 {
				return
			}
			mu.Lock()
			findings = append(findings, hits...)
			mu.Unlock()
		}(tmpl)
	}
	wg.Wait()

	SortFindings(findings)
	return findings
}

// active selects the template subset for a depth. Quick keeps only
// fatal/major and flagged-critical templates; cross-clause templates
// activate at deep only. Quick's set is always a subset of deep's.
func (d *Detector) active(profile *kb.ContractTypeProfile, depth Depth) []*kb.RiskTemplate {
	all := d.kb.TemplatesFor(profile)
	out := make([]*kb.RiskTemplate, 0, len(all))
	for _, t := range all {
		if t.CrossClause() {
			if depth == DepthDeep {
				out = append(out, t)
			}
			continue
		}
		if depth == DepthQuick {
			if t.Severity != kb.SeverityFatal && t.Severity != kb.SeverityMajor && !t.Critical {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// scan runs one template over the document. Per-clause templates may fire on
// several clauses, each hit is a distinct finding. Document-level and
// cross-clause templates produce at most one finding at DocumentLevel.
func (d *Detector) scan(doc *Document, t *kb.RiskTemplate) []RiskFinding {
	if t.CrossClause() {
		if d.correlate(doc, t) {
			return []RiskFinding{newFinding(t, DocumentLevel)}
		}
		return nil
	}
	if t.DocLevel {
		if t.Pattern.MatchText(doc.Raw) {
			return []RiskFinding{newFinding(t, DocumentLevel)}
		}
		return nil
	}

	var hits []RiskFinding
	for i := range doc.Clauses {
		text := doc.Clauses[i].Heading + "\n" + doc.Clauses[i].Text
		if t.Pattern.MatchText(text) {
			hits = append(hits, newFinding(t, i))
		}
	}
	return hits
}

// correlate checks a cross-clause rule: both term groups must hit and on at
// least two distinct clauses.
func (d *Detector) correlate(doc *Document, t *kb.RiskTemplate) bool {
	for i := range doc.Clauses {
		if !kb.MatchAnyTerm(t.Pattern.GroupA, doc.Clauses[i].Text) {
			continue
		}
		for j := range doc.Clauses {
			if j == i {
				continue
			}
			if kb.MatchAnyTerm(t.Pattern.GroupB, doc.Clauses[j].Text) {
				return true
			}
		}
	}
	return false
}

func newFinding(t *kb.RiskTemplate, clause int) RiskFinding {
	return RiskFinding{
		TemplateID:  t.ID,
		Name:        t.Name,
		ClauseIndex: clause,
		Severity:    t.Severity,
		Dimension:   t.Dimension,
		Layer:       t.Layer,
		Stage:       t.Stage,
		Remediation: t.Remediation,
		Source:      SourceDetected,
		order:       t.Order(),
	}
}

// SortFindings orders findings by severity descending, then clause index
// (document-level first), then source declaration order. The ordering is
// total, so repeated runs produce identical sequences.
func SortFindings(findings []RiskFinding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity.Rank() != findings[j].Severity.Rank() {
			return findings[i].Severity.Rank() > findings[j].Severity.Rank()
		}
		if findings[i].ClauseIndex != findings[j].ClauseIndex {
			return findings[i].ClauseIndex < findings[j].ClauseIndex
		}
		return findings[i].order < findings[j].order
	})
}
