package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Review: ReviewConfig{
			Server: ServerConfig{Addr: ":8080", MaxConnections: 100, Timeout: "30s"},
			Auth:   AuthConfig{Token: "secret"},
			KnowledgeBase: KBConfig{
				DataDir: "./data",
			},
			Classifier: ClassifierConfig{ConfidenceThreshold: 0.15, HeadingBoost: 1.25},
			Scoring: ScoringConfig{
				DimensionWeights:   WeightsConfig{Business: 0.30, Legal: 0.40, Practical: 0.30},
				SeverityPenalties:  PenaltiesConfig{Fatal: 25, Major: 12, General: 5, Minor: 2},
				RiskThresholds:     ThresholdsConfig{High: 80, Medium: 60, Low: 40},
				PenaltyCap:         60,
				MaxRecommendations: 5,
			},
			Analysis: AnalysisConfig{NarrativeCap: 3, MaxParallel: 8},
			Output:   OutputConfig{Dir: "./output"},
			Storage:  StorageConfig{Enabled: false},
			Audit:    AuditConfig{Path: "./review_audit.db"},
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_ServerAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Review.Server.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Review.Server.Addr = "not a valid addr::"
	assert.Error(t, cfg.Validate())
}

func TestValidate_AuthToken(t *testing.T) {
	cfg := validConfig()
	cfg.Review.Auth.Token = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestValidate_ClassifierBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Review.Classifier.ConfidenceThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Review.Classifier.ConfidenceThreshold = -0.1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Review.Classifier.HeadingBoost = 0.9
	assert.Error(t, cfg.Validate())
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Review.Scoring.DimensionWeights = WeightsConfig{Business: 0.50, Legal: 0.40, Practical: 0.30}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1")

	cfg = validConfig()
	cfg.Review.Scoring.DimensionWeights.Business = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_PenaltiesMustDecrease(t *testing.T) {
	cfg := validConfig()
	cfg.Review.Scoring.SeverityPenalties = PenaltiesConfig{Fatal: 12, Major: 25, General: 5, Minor: 2}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strictly decrease")

	cfg = validConfig()
	cfg.Review.Scoring.SeverityPenalties.Minor = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_ThresholdsMustBeOrdered(t *testing.T) {
	cfg := validConfig()
	cfg.Review.Scoring.RiskThresholds = ThresholdsConfig{High: 60, Medium: 80, Low: 40}
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Review.Scoring.RiskThresholds.High = 120
	assert.Error(t, cfg.Validate())
}

func TestValidate_AnalysisCaps(t *testing.T) {
	cfg := validConfig()
	cfg.Review.Analysis.NarrativeCap = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Review.Analysis.MaxParallel = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_StorageOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Review.Storage = StorageConfig{Enabled: false, Bucket: "BAD BUCKET"}
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Review.Storage = StorageConfig{
		Enabled:   true,
		Endpoint:  "127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "Invalid_Bucket",
	}
	assert.Error(t, cfg.Validate())
}

func TestIsValidBucketName(t *testing.T) {
	assert.True(t, isValidBucketName("review-artifacts"))
	assert.False(t, isValidBucketName("ab"))
	assert.False(t, isValidBucketName(".leading-dot"))
	assert.False(t, isValidBucketName("double..dot"))
	assert.False(t, isValidBucketName("UpperCase"))
}
