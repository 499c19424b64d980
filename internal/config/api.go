package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
)

// ConfigAPI provides HTTP endpoints to view and modify configuration
type ConfigAPI struct {
	cfg    *Config
	mu     sync.RWMutex
	router *mux.Router
}

func NewConfigAPI(cfg *Config) *ConfigAPI {
	api := &ConfigAPI{
		cfg:    cfg,
		router: mux.NewRouter(),
	}
	api.routes()
	return api
}

func (api *ConfigAPI) Router() *mux.Router {
	return api.router
}

func (api *ConfigAPI) routes() {
	api.router.HandleFunc("/configure", api.getConfig).Methods("GET")
	api.router.HandleFunc("/configure/", api.getConfig).Methods("GET")
	api.router.HandleFunc("/configure", api.updateConfig).Methods("POST")
	api.router.HandleFunc("/configure/reload", api.reloadConfig).Methods("POST")
	api.router.HandleFunc("/configure/validate", api.validateConfig).Methods("POST")
	api.router.HandleFunc("/configure/sections", api.listSections).Methods("GET")
	api.router.HandleFunc("/configure/sections/{section}", api.getSection).Methods("GET")
}

func (api *ConfigAPI) getConfig(w http.ResponseWriter, r *http.Request) {
	api.mu.RLock()
	defer api.mu.RUnlock()
	safeCfg := api.safeConfigCopy()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(safeCfg)
}

func (api *ConfigAPI) updateConfig(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()
	var newCfg Config
	if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid config payload: %v", err), http.StatusBadRequest)
		return
	}
	if err := newCfg.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("invalid configuration: %v", err), http.StatusBadRequest)
		return
	}
	*api.cfg = newCfg
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(api.safeConfigCopy())
}

func (api *ConfigAPI) reloadConfig(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()
	reloadedCfg, err := Load()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to reload config: %v", err), http.StatusInternalServerError)
		return
	}
	*api.cfg = *reloadedCfg
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(api.safeConfigCopy())
}

func (api *ConfigAPI) validateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, fmt.Sprintf("invalid config payload: %v", err), http.StatusBadRequest)
		return
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("invalid configuration: %v", err), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"valid": true, "message": "configuration is valid"})
}

func (api *ConfigAPI) listSections(w http.ResponseWriter, r *http.Request) {
	api.mu.RLock()
	defer api.mu.RUnlock()

	sections := map[string]interface{}{
		"server":         map[string]interface{}{"addr": api.cfg.Review.Server.Addr},
		"knowledge_base": map[string]interface{}{"data_dir": api.cfg.Review.KnowledgeBase.DataDir},
		"classifier":     api.cfg.Review.Classifier,
		"scoring":        api.cfg.Review.Scoring,
		"analysis":       api.cfg.Review.Analysis,
		"output":         api.cfg.Review.Output,
		"storage":        map[string]interface{}{"enabled": api.cfg.Review.Storage.Enabled, "bucket": api.cfg.Review.Storage.Bucket},
		"audit":          api.cfg.Review.Audit,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sections)
}

func (api *ConfigAPI) getSection(w http.ResponseWriter, r *http.Request) {
	api.mu.RLock()
	defer api.mu.RUnlock()

	section := mux.Vars(r)["section"]
	var sectionCfg interface{}

	switch section {
	case "server":
		sectionCfg = api.cfg.Review.Server
	case "knowledge_base":
		sectionCfg = api.cfg.Review.KnowledgeBase
	case "classifier":
		sectionCfg = api.cfg.Review.Classifier
	case "scoring":
		sectionCfg = api.cfg.Review.Scoring
	case "analysis":
		sectionCfg = api.cfg.Review.Analysis
	case "output":
		sectionCfg = api.cfg.Review.Output
	case "storage":
		storageCfg := api.cfg.Review.Storage
		storageCfg.AccessKey = "***"
		storageCfg.SecretKey = "***"
		sectionCfg = storageCfg
	case "audit":
		sectionCfg = api.cfg.Review.Audit
	default:
		http.Error(w, fmt.Sprintf("unknown section: %s", section), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sectionCfg)
}

func (api *ConfigAPI) safeConfigCopy() *Config {
	bytes, _ := json.Marshal(api.cfg)
	var copyCfg Config
	json.Unmarshal(bytes, &copyCfg)
	if copyCfg.Review.Storage.AccessKey != "" {
		copyCfg.Review.Storage.AccessKey = "***"
	}
	if copyCfg.Review.Storage.SecretKey != "" {
		copyCfg.Review.Storage.SecretKey = "***"
	}
	if copyCfg.Review.Auth.Token != "" {
		copyCfg.Review.Auth.Token = "***"
	}
	return &copyCfg
}
