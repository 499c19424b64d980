package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ericksa/contractreview/internal/audit"
	"github.com/ericksa/contractreview/internal/config"
	"github.com/ericksa/contractreview/internal/kb"
	"github.com/ericksa/contractreview/internal/middleware"
	"github.com/ericksa/contractreview/internal/report"
	"github.com/ericksa/contractreview/internal/review"
	"github.com/ericksa/contractreview/internal/storage"
	"github.com/ericksa/contractreview/internal/workers"
	"github.com/ericksa/contractreview/pkg/mcp"
	"github.com/gorilla/mux"
)

var (
	handler *mcp.Handler
	worker  *workers.ReviewWorker
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Knowledge base load failure is fatal, no document is accepted without it
	base, err := kb.Load(cfg.Review.KnowledgeBase.DataDir)
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}

	engine := review.NewEngine(base, engineOptions(cfg))
	renderer := report.NewRenderer(base)
	auditor := audit.NewAuditor(cfg.Review.Audit.Path)
	defer auditor.Close()

	var store *storage.Store
	if cfg.Review.Storage.Enabled {
		store, err = storage.New(storage.Config{
			Endpoint:  cfg.Review.Storage.Endpoint,
			AccessKey: cfg.Review.Storage.AccessKey,
			SecretKey: cfg.Review.Storage.SecretKey,
			Bucket:    cfg.Review.Storage.Bucket,
			UseSSL:    cfg.Review.Storage.UseSSL,
		})
		if err != nil {
			log.Printf("Warning: artifact storage disabled: %v", err)
			store = nil
		} else if err := store.EnsureBucket(context.Background()); err != nil {
			log.Printf("Warning: artifact storage disabled: %v", err)
			store = nil
		}
	}

	worker = workers.NewReviewWorker(engine, renderer, auditor, store, cfg.Review.Output.Dir)
	handler = mcp.NewHandler(worker)

	// Set up router
	router := mux.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.AuthMiddleware(cfg))

	// MCP endpoint
	router.PathPrefix("/mcp").Handler(handler)

	// Health endpoint
	router.HandleFunc("/health", healthHandler).Methods("GET")

	// Review endpoints
	router.HandleFunc("/review", reviewHandler).Methods("POST")
	router.HandleFunc("/review/batch", batchHandler).Methods("POST")
	router.HandleFunc("/classify", classifyHandler).Methods("POST")
	router.HandleFunc("/types", listTypesHandler).Methods("GET")
	router.HandleFunc("/types/{type}", typeGuideHandler).Methods("GET")
	router.HandleFunc("/depths", depthsHandler).Methods("GET")
	router.HandleFunc("/history", historyHandler).Methods("GET")

	// Configuration API
	router.PathPrefix("/configure").Handler(config.NewConfigAPI(cfg).Router())

	// Start server
	srv := &http.Server{
		Addr:         cfg.Review.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Contract Review Gateway on %s", cfg.Review.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func engineOptions(cfg *config.Config) review.Options {
	opts := review.DefaultOptions()
	opts.ConfidenceThreshold = cfg.Review.Classifier.ConfidenceThreshold
	opts.HeadingBoost = cfg.Review.Classifier.HeadingBoost
	opts.NarrativeCap = cfg.Review.Analysis.NarrativeCap
	opts.MaxParallel = cfg.Review.Analysis.MaxParallel
	opts.Scoring = scoringOptions(cfg)
	return opts
}

func scoringOptions(cfg *config.Config) review.ScoringOptions {
	s := cfg.Review.Scoring
	return review.ScoringOptions{
		Weights: map[kb.Dimension]float64{
			kb.DimensionBusiness:  s.DimensionWeights.Business,
			kb.DimensionLegal:     s.DimensionWeights.Legal,
			kb.DimensionPractical: s.DimensionWeights.Practical,
		},
		Penalties: map[kb.Severity]float64{
			kb.SeverityFatal:   s.SeverityPenalties.Fatal,
			kb.SeverityMajor:   s.SeverityPenalties.Major,
			kb.SeverityGeneral: s.SeverityPenalties.General,
			kb.SeverityMinor:   s.SeverityPenalties.Minor,
		},
		ThresholdHigh:      s.RiskThresholds.High,
		ThresholdMedium:    s.RiskThresholds.Medium,
		ThresholdLow:       s.RiskThresholds.Low,
		PenaltyCap:         s.PenaltyCap,
		MaxRecommendations: s.MaxRecommendations,
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func reviewHandler(w http.ResponseWriter, r *http.Request) {
	executeToolHandler(w, r, "review")
}

func batchHandler(w http.ResponseWriter, r *http.Request) {
	executeToolHandler(w, r, "review_batch")
}

func classifyHandler(w http.ResponseWriter, r *http.Request) {
	executeToolHandler(w, r, "classify")
}

func listTypesHandler(w http.ResponseWriter, r *http.Request) {
	writeToolResult(w, r, "list_types", []byte(`{}`))
}

func typeGuideHandler(w http.ResponseWriter, r *http.Request) {
	args, _ := json.Marshal(map[string]string{"type": mux.Vars(r)["type"]})
	writeToolResult(w, r, "type_guide", args)
}

func depthsHandler(w http.ResponseWriter, r *http.Request) {
	writeToolResult(w, r, "depth_options", []byte(`{}`))
}

func historyHandler(w http.ResponseWriter, r *http.Request) {
	writeToolResult(w, r, "history", []byte(`{}`))
}

func executeToolHandler(w http.ResponseWriter, r *http.Request, toolName string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		body = []byte(`{}`)
	}
	if !json.Valid(body) {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	writeToolResult(w, r, toolName, body)
}

func writeToolResult(w http.ResponseWriter, r *http.Request, toolName string, args []byte) {
	if worker == nil {
		http.Error(w, "handler not initialized", http.StatusInternalServerError)
		return
	}

	result, err := worker.Execute(r.Context(), toolName, args)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(result)
}
