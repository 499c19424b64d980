package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"log"
	"os"
	"path/filepath"
)

// Config represents the complete review service configuration
// The structure matches the config.yaml file and can be overridden by environment variables

type Config struct {
	Review ReviewConfig `json:"review" mapstructure:"review"`
}

// ReviewConfig contains the main review service configuration

type ReviewConfig struct {
	Server        ServerConfig     `json:"server" mapstructure:"server"`
	Auth          AuthConfig       `json:"auth" mapstructure:"auth"`
	KnowledgeBase KBConfig         `json:"knowledge_base" mapstructure:"knowledge_base"`
	Classifier    ClassifierConfig `json:"classifier" mapstructure:"classifier"`
	Scoring       ScoringConfig    `json:"scoring" mapstructure:"scoring"`
	Analysis      AnalysisConfig   `json:"analysis" mapstructure:"analysis"`
	Output        OutputConfig     `json:"output" mapstructure:"output"`
	Storage       StorageConfig    `json:"storage" mapstructure:"storage"`
	Audit         AuditConfig      `json:"audit" mapstructure:"audit"`
}

// ServerConfig contains server-specific configuration

type ServerConfig struct {
	Addr           string `json:"addr" mapstructure:"addr"`
	MaxConnections int    `json:"max_connections" mapstructure:"max_connections"`
	Timeout        string `json:"timeout" mapstructure:"timeout"`
}

// AuthConfig contains authentication configuration

type AuthConfig struct {
	Token string `json:"token" mapstructure:"token"`
}

// KBConfig locates the tabular knowledge base sources

type KBConfig struct {
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ClassifierConfig tunes contract type identification

type ClassifierConfig struct {
	ConfidenceThreshold float64 `json:"confidence_threshold" mapstructure:"confidence_threshold"`
	HeadingBoost        float64 `json:"heading_boost" mapstructure:"heading_boost"`
}

// ScoringConfig carries every scoring constant explicitly so nothing is
// buried in code: dimension weights, per-severity penalties, risk level
// thresholds, the normalization cap and the recommendation count

type ScoringConfig struct {
	DimensionWeights   WeightsConfig    `json:"dimension_weights" mapstructure:"dimension_weights"`
	SeverityPenalties  PenaltiesConfig  `json:"severity_penalties" mapstructure:"severity_penalties"`
	RiskThresholds     ThresholdsConfig `json:"risk_thresholds" mapstructure:"risk_thresholds"`
	PenaltyCap         float64          `json:"penalty_cap" mapstructure:"penalty_cap"`
	MaxRecommendations int              `json:"max_recommendations" mapstructure:"max_recommendations"`
}

// WeightsConfig contains the per-dimension composite weights

type WeightsConfig struct {
	Business  float64 `json:"business" mapstructure:"business"`
	Legal     float64 `json:"legal" mapstructure:"legal"`
	Practical float64 `json:"practical" mapstructure:"practical"`
}

// PenaltiesConfig contains the per-severity penalty points

type PenaltiesConfig struct {
	Fatal   float64 `json:"fatal" mapstructure:"fatal"`
	Major   float64 `json:"major" mapstructure:"major"`
	General float64 `json:"general" mapstructure:"general"`
	Minor   float64 `json:"minor" mapstructure:"minor"`
}

// ThresholdsConfig contains the composite score risk level boundaries

type ThresholdsConfig struct {
	High   float64 `json:"high" mapstructure:"high"`
	Medium float64 `json:"medium" mapstructure:"medium"`
	Low    float64 `json:"low" mapstructure:"low"`
}

// AnalysisConfig tunes the layered analysis step

type AnalysisConfig struct {
	NarrativeCap int `json:"narrative_cap" mapstructure:"narrative_cap"`
	MaxParallel  int `json:"max_parallel" mapstructure:"max_parallel"`
}

// OutputConfig controls where rendered artifacts are written

type OutputConfig struct {
	Dir string `json:"dir" mapstructure:"dir"`
}

// StorageConfig contains the optional MinIO artifact upload configuration

type StorageConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Endpoint  string `json:"endpoint" mapstructure:"endpoint"`
	AccessKey string `json:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `json:"use_ssl" mapstructure:"use_ssl"`
	Bucket    string `json:"bucket" mapstructure:"bucket"`
}

// AuditConfig locates the review audit log

type AuditConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	// Load .env first (ignore error if not present)
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.contractreview")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("REVIEW")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Resolve paths (expand ~)
	cfg.Review.KnowledgeBase.DataDir = resolvePath(cfg.Review.KnowledgeBase.DataDir)
	cfg.Review.Output.Dir = resolvePath(cfg.Review.Output.Dir)
	if cfg.Review.Audit.Path != "" {
		cfg.Review.Audit.Path = resolvePath(cfg.Review.Audit.Path)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("REVIEW.SERVER.ADDR", ":8080")
	viper.SetDefault("REVIEW.SERVER.MAX_CONNECTIONS", 1000)
	viper.SetDefault("REVIEW.SERVER.TIMEOUT", "30s")

	viper.SetDefault("REVIEW.AUTH.TOKEN", "default-secret-token")

	viper.SetDefault("REVIEW.KNOWLEDGE_BASE.DATA_DIR", "./data")

	// Classifier defaults
	viper.SetDefault("REVIEW.CLASSIFIER.CONFIDENCE_THRESHOLD", 0.15)
	viper.SetDefault("REVIEW.CLASSIFIER.HEADING_BOOST", 1.25)

	// Scoring defaults
	viper.SetDefault("REVIEW.SCORING.DIMENSION_WEIGHTS.BUSINESS", 0.30)
	viper.SetDefault("REVIEW.SCORING.DIMENSION_WEIGHTS.LEGAL", 0.40)
	viper.SetDefault("REVIEW.SCORING.DIMENSION_WEIGHTS.PRACTICAL", 0.30)
	viper.SetDefault("REVIEW.SCORING.SEVERITY_PENALTIES.FATAL", 25.0)
	viper.SetDefault("REVIEW.SCORING.SEVERITY_PENALTIES.MAJOR", 12.0)
	viper.SetDefault("REVIEW.SCORING.SEVERITY_PENALTIES.GENERAL", 5.0)
	viper.SetDefault("REVIEW.SCORING.SEVERITY_PENALTIES.MINOR", 2.0)
	viper.SetDefault("REVIEW.SCORING.RISK_THRESHOLDS.HIGH", 80.0)
	viper.SetDefault("REVIEW.SCORING.RISK_THRESHOLDS.MEDIUM", 60.0)
	viper.SetDefault("REVIEW.SCORING.RISK_THRESHOLDS.LOW", 40.0)
	viper.SetDefault("REVIEW.SCORING.PENALTY_CAP", 60.0)
	viper.SetDefault("REVIEW.SCORING.MAX_RECOMMENDATIONS", 5)

	// Analysis defaults
	viper.SetDefault("REVIEW.ANALYSIS.NARRATIVE_CAP", 3)
	viper.SetDefault("REVIEW.ANALYSIS.MAX_PARALLEL", 8)

	viper.SetDefault("REVIEW.OUTPUT.DIR", "./output")

	// Storage defaults
	viper.SetDefault("REVIEW.STORAGE.ENABLED", false)
	viper.SetDefault("REVIEW.STORAGE.ENDPOINT", "127.0.0.1:9000")
	viper.SetDefault("REVIEW.STORAGE.ACCESS_KEY", "minioadmin")
	viper.SetDefault("REVIEW.STORAGE.SECRET_KEY", "minioadmin")
	viper.SetDefault("REVIEW.STORAGE.USE_SSL", false)
	viper.SetDefault("REVIEW.STORAGE.BUCKET", "review-artifacts")

	viper.SetDefault("REVIEW.AUDIT.PATH", "./review_audit.db")
}

// resolvePath resolves ~ to home directory and cleans the path
func resolvePath(p string) string {
	if p == "" {
		return p
	}
	if p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return filepath.Clean(p)
}
