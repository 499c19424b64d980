package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"regexp"
	"strings"
)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Review.Server.Addr == "" {
		return errors.New("server address cannot be empty")
	}

	// Validate address format and port
	if _, err := net.ResolveTCPAddr("tcp", c.Review.Server.Addr); err != nil {
		return fmt.Errorf("invalid server address: %v", err)
	}

	// Validate auth configuration
	if c.Review.Auth.Token == "" {
		return errors.New("auth token cannot be empty")
	}

	// Validate knowledge base location
	if c.Review.KnowledgeBase.DataDir == "" {
		return errors.New("knowledge base data_dir cannot be empty")
	}

	// Validate classifier configuration
	if c.Review.Classifier.ConfidenceThreshold < 0 || c.Review.Classifier.ConfidenceThreshold > 1 {
		return fmt.Errorf("classifier confidence_threshold must be in [0,1], got %v", c.Review.Classifier.ConfidenceThreshold)
	}
	if c.Review.Classifier.HeadingBoost < 1 {
		return fmt.Errorf("classifier heading_boost must be >= 1, got %v", c.Review.Classifier.HeadingBoost)
	}

	// Validate scoring configuration
	if err := c.Review.Scoring.validate(); err != nil {
		return err
	}

	// Validate analysis configuration
	if c.Review.Analysis.NarrativeCap <= 0 {
		return errors.New("analysis narrative_cap must be positive")
	}
	if c.Review.Analysis.MaxParallel <= 0 {
		return errors.New("analysis max_parallel must be positive")
	}

	// Validate storage configuration
	if c.Review.Storage.Enabled {
		if c.Review.Storage.Endpoint == "" {
			return errors.New("storage endpoint cannot be empty when storage is enabled")
		}
		if c.Review.Storage.AccessKey == "" {
			return errors.New("storage access key cannot be empty when storage is enabled")
		}
		if c.Review.Storage.SecretKey == "" {
			return errors.New("storage secret key cannot be empty when storage is enabled")
		}
		if c.Review.Storage.Bucket == "" {
			return errors.New("storage bucket cannot be empty when storage is enabled")
		}
		if !isValidBucketName(c.Review.Storage.Bucket) {
			return fmt.Errorf("invalid storage bucket name: %s", c.Review.Storage.Bucket)
		}
	}

	return nil
}

// validate rejects scoring constants that would make the composite score
// meaningless: weights must sum to 1, penalties must strictly decrease with
// severity, thresholds must be strictly ordered.
func (s *ScoringConfig) validate() error {
	w := s.DimensionWeights
	if w.Business <= 0 || w.Legal <= 0 || w.Practical <= 0 {
		return errors.New("scoring dimension weights must all be positive")
	}
	if sum := w.Business + w.Legal + w.Practical; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring dimension weights must sum to 1, got %v", sum)
	}

	p := s.SeverityPenalties
	if p.Minor <= 0 {
		return errors.New("scoring severity penalties must all be positive")
	}
	if !(p.Fatal > p.Major && p.Major > p.General && p.General > p.Minor) {
		return errors.New("scoring severity penalties must strictly decrease from fatal to minor")
	}

	t := s.RiskThresholds
	if !(t.High > t.Medium && t.Medium > t.Low && t.Low > 0) {
		return errors.New("scoring risk thresholds must satisfy high > medium > low > 0")
	}
	if t.High > 100 {
		return fmt.Errorf("scoring risk threshold high must not exceed 100, got %v", t.High)
	}

	if s.PenaltyCap <= 0 {
		return errors.New("scoring penalty_cap must be positive")
	}
	if s.MaxRecommendations <= 0 {
		return errors.New("scoring max_recommendations must be positive")
	}
	return nil
}

// isValidBucketName checks if a bucket name is valid according to MinIO/S3 rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	if !regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`).MatchString(name) {
		return false
	}
	return true
}
