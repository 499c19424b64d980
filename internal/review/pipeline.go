package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericksa/contractreview/internal/kb"
)

// Options bundles the pipeline tuning knobs. Values come from configuration
// and are fixed for the lifetime of an Engine.
type Options struct {
	ConfidenceThreshold float64
	HeadingBoost        float64
	NarrativeCap        int
	MaxParallel         int
	Scoring             ScoringOptions
}

func DefaultOptions() Options {
	return Options{
		ConfidenceThreshold: 0.15,
		HeadingBoost:        1.25,
		NarrativeCap:        3,
		MaxParallel:         8,
		Scoring:             DefaultScoringOptions(),
	}
}

// Engine is the full review pipeline: classify, detect, check coverage,
// organize by layer, score. It holds only the read-only knowledge base and
// the tuning constants, so concurrent reviews need no coordination.
type Engine struct {
	kb         *kb.KnowledgeBase
	classifier *Classifier
	detector   *Detector
	reviewer   *Reviewer
	analyzer   *Analyzer
	scorer     *Scorer
	parallel   int
}

func NewEngine(base *kb.KnowledgeBase, opts Options) *Engine {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 1
	}
	return &Engine{
		kb:         base,
		classifier: NewClassifier(base, opts.ConfidenceThreshold, opts.HeadingBoost),
		detector:   NewDetector(base, opts.MaxParallel),
		reviewer:   NewReviewer(base),
		analyzer:   NewAnalyzer(opts.NarrativeCap),
		scorer:     NewScorer(opts.Scoring),
		parallel:   opts.MaxParallel,
	}
}

// KnowledgeBase exposes the engine's reference data to read-only consumers.
func (e *Engine) KnowledgeBase() *kb.KnowledgeBase { return e.kb }

// Classify runs only the classification stage over raw text.
func (e *Engine) Classify(name, text string) ([]Candidate, error) {
	doc, err := Ingest(name, text)
	if err != nil {
		return nil, err
	}
	return e.classifier.Identify(doc), nil
}

// Result is the complete outcome of one review run.
type Result struct {
	Document   *Document               `json:"document"`
	Profile    *kb.ContractTypeProfile `json:"profile"`
	Confidence float64                 `json:"confidence"`
	Candidates []Candidate             `json:"candidates"`
	Depth      Depth                   `json:"depth"`
	Context    Context                 `json:"context"`
	Findings   []RiskFinding           `json:"findings"`
	Checklist  []ChecklistResult       `json:"checklist"`
	Analysis   *Analysis               `json:"analysis,omitempty"`
	Report     *ScoringReport          `json:"report"`
}

// Review runs the linear pipeline over one document. Empty text and unknown
// depth are the only errors; every other condition degrades to a fallback
// (generic profile, skipped template).
func (e *Engine) Review(ctx context.Context, name, text string, depth Depth, rctx Context) (*Result, error) {
	switch depth {
	case DepthQuick, DepthStandard, DepthDeep:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDepth, depth)
	}

	doc, err := Ingest(name, text)
	if err != nil {
		return nil, err
	}

	candidates := e.classifier.Identify(doc)
	profile := candidates[0].Profile

	findings := e.detector.Detect(ctx, doc, profile, depth)
	checklist, escalated := e.reviewer.Review(doc, profile)
	if len(escalated) > 0 {
		findings = append(findings, escalated...)
		SortFindings(findings)
	}

	return &Result{
		Document:   doc,
		Profile:    profile,
		Confidence: candidates[0].Confidence,
		Candidates: candidates,
		Depth:      depth,
		Context:    rctx,
		Findings:   findings,
		Checklist:  checklist,
		Analysis:   e.analyzer.Organize(depth, findings, checklist),
		Report:     e.scorer.Score(findings, checklist),
	}, nil
}

// BatchInput is one document of a batch request.
type BatchInput struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// BatchResult pairs a document with its outcome. A failed document carries
// the error message instead of a result, the rest of the batch completes.
type BatchResult struct {
	Name   string  `json:"name"`
	Result *Result `json:"result,omitempty"`
	Err    string  `json:"error,omitempty"`
}

// ReviewBatch reviews documents concurrently. Results keep input order.
func (e *Engine) ReviewBatch(ctx context.Context, inputs []BatchInput, depth Depth, rctx Context) []BatchResult {
	out := make([]BatchResult, len(inputs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.parallel)
	for i, in := range inputs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, in BatchInput) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := e.Review(ctx, in.Name, in.Text, depth, rctx)
			if err != nil {
				out[i] = BatchResult{Name: in.Name, Err: err.Error()}
				return
			}
			out[i] = BatchResult{Name: in.Name, Result: res}
		}(i, in)
	}
	wg.Wait()
	return out
}

// TypeGuide summarizes what a review of one contract type covers.
type TypeGuide struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Category  kb.Category         `json:"category"`
	CoreRisks string              `json:"core_risks,omitempty"`
	Templates []*kb.RiskTemplate  `json:"templates"`
	Checklist []*kb.ChecklistItem `json:"checklist"`
}

// Guide returns the review guideline for a contract type id.
func (e *Engine) Guide(id string) (*TypeGuide, error) {
	profile, ok := e.kb.Profile(id)
	if !ok {
		return nil, fmt.Errorf("unknown contract type: %q", id)
	}
	return &TypeGuide{
		ID:        profile.ID,
		Name:      profile.Name,
		Category:  profile.Category,
		CoreRisks: profile.CoreRisks,
		Templates: e.kb.TemplatesFor(profile),
		Checklist: e.kb.ChecklistFor(profile),
	}, nil
}

// Types lists every supported contract type profile.
func (e *Engine) Types() []*kb.ContractTypeProfile {
	out := make([]*kb.ContractTypeProfile, 0, len(e.kb.Profiles))
	for i := range e.kb.Profiles {
		out = append(out, &e.kb.Profiles[i])
	}
	return out
}

// DepthOption describes one supported review depth.
type DepthOption struct {
	Depth       Depth  `json:"depth"`
	Description string `json:"description"`
}

// DepthOptions lists the supported depths with their coverage notes.
func DepthOptions() []DepthOption {
	return []DepthOption{
		{DepthQuick, "fatal and major risks plus flagged critical checks only, no layered analysis"},
		{DepthStandard, "full template and checklist coverage for the identified type"},
		{DepthDeep, "standard coverage plus cross-clause correlation rules"},
	}
}
