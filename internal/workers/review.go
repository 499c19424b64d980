package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ericksa/contractreview/internal/audit"
	"github.com/ericksa/contractreview/internal/report"
	"github.com/ericksa/contractreview/internal/review"
	"github.com/ericksa/contractreview/internal/storage"
)

// ReviewWorker exposes the review pipeline as gateway/MCP tools.
type ReviewWorker struct {
	Engine    *review.Engine
	Renderer  *report.Renderer
	Auditor   *audit.Auditor
	Store     *storage.Store // nil when artifact upload is disabled
	OutputDir string
}

func NewReviewWorker(engine *review.Engine, renderer *report.Renderer, auditor *audit.Auditor, store *storage.Store, outputDir string) *ReviewWorker {
	return &ReviewWorker{
		Engine:    engine,
		Renderer:  renderer,
		Auditor:   auditor,
		Store:     store,
		OutputDir: outputDir,
	}
}

func (w *ReviewWorker) GetTools() []ToolDef {
	return []ToolDef{
		{Name: "review", Description: "Review a contract and produce a scored risk report"},
		{Name: "review_batch", Description: "Review several contracts in one call"},
		{Name: "classify", Description: "Identify the contract type of a document"},
		{Name: "type_guide", Description: "Show the review guideline for a contract type"},
		{Name: "list_types", Description: "List supported contract types"},
		{Name: "depth_options", Description: "List supported review depths"},
		{Name: "history", Description: "Show recent review log entries"},
	}
}

func (w *ReviewWorker) Execute(ctx context.Context, name string, input json.RawMessage) ([]byte, error) {
	switch name {
	case "contract_review", "review":
		return w.review(ctx, input)
	case "contract_review_batch", "review_batch":
		return w.reviewBatch(ctx, input)
	case "contract_classify", "classify":
		return w.classify(ctx, input)
	case "contract_type_guide", "type_guide":
		return w.typeGuide(ctx, input)
	case "contract_list_types", "list_types":
		return w.listTypes(ctx, input)
	case "contract_depth_options", "depth_options":
		return w.depthOptions(ctx, input)
	case "contract_history", "history":
		return w.history(ctx, input)
	default:
		return nil, nil
	}
}

// review runs the full pipeline over one document and optionally renders
// the opinion and annotated copy to disk.
func (w *ReviewWorker) review(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Name    string            `json:"name"`
		Text    string            `json:"text"`
		Depth   string            `json:"depth"`
		Context map[string]string `json:"context,omitempty"`
		Render  bool              `json:"render,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Text == "" {
		return nil, fmt.Errorf("text required")
	}

	depth, err := review.ParseDepth(req.Depth)
	if err != nil {
		return nil, err
	}
	rctx, err := review.ContextFromMap(req.Context)
	if err != nil {
		return nil, err
	}

	res, err := w.Engine.Review(ctx, req.Name, req.Text, depth, rctx)
	if err != nil {
		if w.Auditor != nil {
			w.Auditor.RecordFailure(req.Name, err)
		}
		return nil, err
	}
	if w.Auditor != nil {
		w.Auditor.Record(res)
	}

	out := map[string]any{
		"name":            res.Document.Name,
		"contract_type":   res.Profile.ID,
		"confidence":      res.Confidence,
		"depth":           res.Depth,
		"clause_count":    len(res.Document.Clauses),
		"finding_count":   len(res.Findings),
		"composite":       res.Report.Composite,
		"risk_level":      res.Report.RiskLevel,
		"advice":          res.Report.RiskLevel.Advice(),
		"dimensions":      res.Report.Dimensions,
		"findings":        res.Findings,
		"checklist":       res.Checklist,
		"recommendations": res.Report.Recommendations,
	}
	if res.Analysis != nil {
		out["analysis"] = res.Analysis
	}

	if req.Render {
		opinionPath, annotatedPath, err := w.Renderer.Write(w.OutputDir, res, time.Now())
		if err != nil {
			return nil, err
		}
		out["opinion_path"] = opinionPath
		out["annotated_path"] = annotatedPath
		w.upload(ctx, res, opinionPath, annotatedPath)
	}

	return json.Marshal(out)
}

// upload pushes rendered artifacts to object storage when configured.
// Upload failure is logged, the review result is already complete.
func (w *ReviewWorker) upload(ctx context.Context, res *review.Result, paths ...string) {
	if w.Store == nil {
		return
	}
	for _, p := range paths {
		object := filepath.Base(p)
		if _, err := w.Store.UploadArtifact(ctx, p, object, map[string]string{
			"contract-type": res.Profile.ID,
			"risk-level":    string(res.Report.RiskLevel),
		}); err != nil {
			log.Printf("artifact upload failed for %s: %v", object, err)
		}
	}
}

func (w *ReviewWorker) reviewBatch(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Documents []review.BatchInput `json:"documents"`
		Depth     string              `json:"depth"`
		Context   map[string]string   `json:"context,omitempty"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if len(req.Documents) == 0 {
		return nil, fmt.Errorf("documents required")
	}

	depth, err := review.ParseDepth(req.Depth)
	if err != nil {
		return nil, err
	}
	rctx, err := review.ContextFromMap(req.Context)
	if err != nil {
		return nil, err
	}

	results := w.Engine.ReviewBatch(ctx, req.Documents, depth, rctx)
	summaries := make([]map[string]any, 0, len(results))
	for _, r := range results {
		if r.Err != "" {
			if w.Auditor != nil {
				w.Auditor.RecordFailure(r.Name, fmt.Errorf("%s", r.Err))
			}
			summaries = append(summaries, map[string]any{"name": r.Name, "error": r.Err})
			continue
		}
		if w.Auditor != nil {
			w.Auditor.Record(r.Result)
		}
		summaries = append(summaries, map[string]any{
			"name":          r.Name,
			"contract_type": r.Result.Profile.ID,
			"composite":     r.Result.Report.Composite,
			"risk_level":    r.Result.Report.RiskLevel,
			"finding_count": len(r.Result.Findings),
		})
	}
	return json.Marshal(map[string]any{
		"count":   len(summaries),
		"results": summaries,
	})
}

func (w *ReviewWorker) classify(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Text == "" {
		return nil, fmt.Errorf("text required")
	}

	candidates, err := w.Engine.Classify(req.Name, req.Text)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, map[string]any{
			"id":         c.Profile.ID,
			"name":       c.Profile.Name,
			"category":   c.Profile.Category,
			"confidence": c.Confidence,
			"matched":    c.Matched,
		})
	}
	return json.Marshal(out)
}

func (w *ReviewWorker) typeGuide(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	guide, err := w.Engine.Guide(req.Type)
	if err != nil {
		return nil, err
	}
	return json.Marshal(guide)
}

func (w *ReviewWorker) listTypes(ctx context.Context, input json.RawMessage) ([]byte, error) {
	types := w.Engine.Types()
	out := make([]map[string]any, 0, len(types))
	for _, p := range types {
		out = append(out, map[string]any{
			"id":       p.ID,
			"name":     p.Name,
			"category": p.Category,
		})
	}
	return json.Marshal(out)
}

func (w *ReviewWorker) depthOptions(ctx context.Context, input json.RawMessage) ([]byte, error) {
	return json.Marshal(review.DepthOptions())
}

func (w *ReviewWorker) history(ctx context.Context, input json.RawMessage) ([]byte, error) {
	var req struct {
		Limit int `json:"limit"`
	}
	json.Unmarshal(input, &req)
	if req.Limit == 0 {
		req.Limit = 50
	}
	if w.Auditor == nil {
		return []byte(`[]`), nil
	}
	entries, err := w.Auditor.GetLogs(req.Limit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(entries)
}
