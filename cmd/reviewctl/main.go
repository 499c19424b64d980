package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ericksa/contractreview/internal/audit"
	"github.com/ericksa/contractreview/internal/config"
	"github.com/ericksa/contractreview/internal/kb"
	"github.com/ericksa/contractreview/internal/report"
	"github.com/ericksa/contractreview/internal/review"
)

func main() {
	var (
		depthFlag    = flag.String("depth", "standard", "review depth: quick, standard or deep")
		outFlag      = flag.String("out", "", "output directory for rendered artifacts (default from config)")
		jsonFlag     = flag.Bool("json", false, "print the raw result as JSON instead of rendering")
		partyFlag    = flag.String("party", "", "the represented side")
		positionFlag = flag.String("position", "", "bargaining position: strong, equal or weak")
		historyFlag  = flag.String("history", "", "prior dealings note")
		focusFlag    = flag.String("focus", "", "stated priority concern")
	)
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if *outFlag == "" {
		*outFlag = cfg.Review.Output.Dir
	}

	base, err := kb.Load(cfg.Review.KnowledgeBase.DataDir)
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}

	opts := review.DefaultOptions()
	opts.ConfidenceThreshold = cfg.Review.Classifier.ConfidenceThreshold
	opts.HeadingBoost = cfg.Review.Classifier.HeadingBoost
	opts.NarrativeCap = cfg.Review.Analysis.NarrativeCap
	opts.MaxParallel = cfg.Review.Analysis.MaxParallel
	opts.Scoring = review.ScoringOptions{
		Weights: map[kb.Dimension]float64{
			kb.DimensionBusiness:  cfg.Review.Scoring.DimensionWeights.Business,
			kb.DimensionLegal:     cfg.Review.Scoring.DimensionWeights.Legal,
			kb.DimensionPractical: cfg.Review.Scoring.DimensionWeights.Practical,
		},
		Penalties: map[kb.Severity]float64{
			kb.SeverityFatal:   cfg.Review.Scoring.SeverityPenalties.Fatal,
			kb.SeverityMajor:   cfg.Review.Scoring.SeverityPenalties.Major,
			kb.SeverityGeneral: cfg.Review.Scoring.SeverityPenalties.General,
			kb.SeverityMinor:   cfg.Review.Scoring.SeverityPenalties.Minor,
		},
		ThresholdHigh:      cfg.Review.Scoring.RiskThresholds.High,
		ThresholdMedium:    cfg.Review.Scoring.RiskThresholds.Medium,
		ThresholdLow:       cfg.Review.Scoring.RiskThresholds.Low,
		PenaltyCap:         cfg.Review.Scoring.PenaltyCap,
		MaxRecommendations: cfg.Review.Scoring.MaxRecommendations,
	}
	engine := review.NewEngine(base, opts)

	switch flag.Arg(0) {
	case "types":
		for _, p := range engine.Types() {
			fmt.Printf("%-20s %-14s %s\n", p.ID, p.Category, p.Name)
		}
	case "guide":
		if flag.Arg(1) == "" {
			log.Fatal("usage: reviewctl guide <type>")
		}
		guide, err := engine.Guide(flag.Arg(1))
		if err != nil {
			log.Fatal(err)
		}
		printJSON(guide)
	case "depths":
		for _, d := range review.DepthOptions() {
			fmt.Printf("%-10s %s\n", d.Depth, d.Description)
		}
	case "classify":
		if flag.Arg(1) == "" {
			log.Fatal("usage: reviewctl classify <file>")
		}
		name, text := readDocument(flag.Arg(1))
		candidates, err := engine.Classify(name, text)
		if err != nil {
			log.Fatal(err)
		}
		for _, c := range candidates {
			fmt.Printf("%-20s confidence %.2f (%d matched)\n", c.Profile.ID, c.Confidence, c.Matched)
		}
	case "":
		usage()
		os.Exit(2)
	case "review":
		files := flag.Args()[1:]
		if len(files) == 0 {
			usage()
			os.Exit(2)
		}
		rctx := review.Context{
			Party:    *partyFlag,
			Position: review.Position(*positionFlag),
			History:  *historyFlag,
			Focus:    *focusFlag,
		}
		if len(files) > 1 {
			runBatch(cfg, engine, files, *depthFlag, rctx)
			return
		}
		runReview(cfg, engine, base, files[0], *depthFlag, *outFlag, *jsonFlag, rctx)
	default:
		// Bare file argument means review
		runReview(cfg, engine, base, flag.Arg(0), *depthFlag, *outFlag, *jsonFlag, review.Context{
			Party:    *partyFlag,
			Position: review.Position(*positionFlag),
			History:  *historyFlag,
			Focus:    *focusFlag,
		})
	}
}

func runReview(cfg *config.Config, engine *review.Engine, base *kb.KnowledgeBase, file, depthStr, outDir string, asJSON bool, rctx review.Context) {
	depth, err := review.ParseDepth(depthStr)
	if err != nil {
		log.Fatal(err)
	}

	name, text := readDocument(file)
	res, err := engine.Review(context.Background(), name, text, depth, rctx)
	if err != nil {
		log.Fatalf("Review failed: %v", err)
	}

	auditor := audit.NewAuditor(cfg.Review.Audit.Path)
	defer auditor.Close()
	auditor.Record(res)

	if asJSON {
		printJSON(res)
		return
	}

	renderer := report.NewRenderer(base)
	opinionPath, annotatedPath, err := renderer.Write(outDir, res, time.Now())
	if err != nil {
		log.Fatalf("Failed to write artifacts: %v", err)
	}

	fmt.Printf("Contract type: %s (confidence %.2f)\n", res.Profile.Name, res.Confidence)
	fmt.Printf("Composite score: %d (%s: %s)\n", res.Report.Composite, res.Report.RiskLevel, res.Report.RiskLevel.Advice())
	fmt.Printf("Findings: %d\n", len(res.Findings))
	fmt.Printf("Opinion: %s\n", opinionPath)
	fmt.Printf("Annotated copy: %s\n", annotatedPath)
}

// runBatch reviews several files concurrently and prints one summary line
// per document. A failed document reports its error and the rest complete.
func runBatch(cfg *config.Config, engine *review.Engine, files []string, depthStr string, rctx review.Context) {
	depth, err := review.ParseDepth(depthStr)
	if err != nil {
		log.Fatal(err)
	}

	inputs := make([]review.BatchInput, 0, len(files))
	for _, f := range files {
		name, text := readDocument(f)
		inputs = append(inputs, review.BatchInput{Name: name, Text: text})
	}

	auditor := audit.NewAuditor(cfg.Review.Audit.Path)
	defer auditor.Close()

	for _, r := range engine.ReviewBatch(context.Background(), inputs, depth, rctx) {
		if r.Err != "" {
			auditor.RecordFailure(r.Name, fmt.Errorf("%s", r.Err))
			fmt.Printf("%-30s ERROR: %s\n", r.Name, r.Err)
			continue
		}
		auditor.Record(r.Result)
		fmt.Printf("%-30s %-10s score %3d (%s), %d finding(s)\n",
			r.Name, r.Result.Profile.ID, r.Result.Report.Composite,
			r.Result.Report.RiskLevel, len(r.Result.Findings))
	}
}

func readDocument(path string) (name, text string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}
	return filepath.Base(path), string(data)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  reviewctl [flags] review <file...> review one or more contracts
  reviewctl [flags] classify <file>  identify the contract type
  reviewctl guide <type>             show the review guideline for a type
  reviewctl types                    list supported contract types
  reviewctl depths                   list review depths

Flags:
`)
	flag.PrintDefaults()
}
