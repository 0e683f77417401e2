// Copyright 2025 MA-ISA Protocol
//
// Environment Configuration
// Reads runtime and per-dimension policy settings from environment variables

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/maisa-protocol/integrity-accumulator/pkg/policy"
	"github.com/maisa-protocol/integrity-accumulator/pkg/state"
)

// Config holds all configuration for a device runtime deployment.
type Config struct {
	// Device identification
	DeviceID string

	// State persistence
	StatePath string

	// Master seed as 64 lowercase hex characters. Empty means the caller
	// generates a random seed at initialization.
	MasterSeed string

	// Per-dimension policy settings
	Dimensions []DimensionConfig

	// Adaptive profile settings. Parsed for forward compatibility; the
	// adaptive module itself is non-normative and not part of this library.
	LearningRate    float32
	MinObservations uint64

	// Database persistence (optional)
	DatabaseURL string

	// Firestore audit sync (optional)
	FirestoreEnabled        bool
	FirebaseProjectID       string
	FirebaseCredentialsFile string
}

// DimensionConfig configures the policy for a single dimension.
type DimensionConfig struct {
	Index     int
	Name      string
	Threshold uint64
	Strategy  string
	Critical  bool
	Weight    float32
	Enabled   bool
}

// Load reads configuration from environment variables.
//
// Per-dimension variables follow the pattern ISA_DIM<i>_NAME, _THRESHOLD,
// _STRATEGY, _CRITICAL, _WEIGHT. Unset values fall back to defaults:
// name "Dimension <i>", threshold 1000, strategy ImmediateHeal, not
// critical, weight 1.0, enabled.
func Load(dimensionCount int) *Config {
	cfg := &Config{
		DeviceID:   getEnv("ISA_DEVICE_ID", "device-default"),
		StatePath:  getEnv("ISA_STATE_PATH", "device.state"),
		MasterSeed: getEnv("ISA_MASTER_SEED", ""),

		LearningRate:    getEnvFloat("ISA_LEARNING_RATE", 0.1),
		MinObservations: getEnvUint64("ISA_MIN_OBSERVATIONS", 10),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		FirestoreEnabled:        getEnvBool("FIRESTORE_ENABLED", false),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
	}

	for i := 0; i < dimensionCount; i++ {
		cfg.Dimensions = append(cfg.Dimensions, DimensionConfig{
			Index:     i,
			Name:      getEnv(fmt.Sprintf("ISA_DIM%d_NAME", i), fmt.Sprintf("Dimension %d", i)),
			Threshold: getEnvUint64(fmt.Sprintf("ISA_DIM%d_THRESHOLD", i), 1000),
			Strategy:  getEnv(fmt.Sprintf("ISA_DIM%d_STRATEGY", i), "ImmediateHeal"),
			Critical:  getEnvBool(fmt.Sprintf("ISA_DIM%d_CRITICAL", i), false),
			Weight:    getEnvFloat(fmt.Sprintf("ISA_DIM%d_WEIGHT", i), 1.0),
			Enabled:   true,
		})
	}

	return cfg
}

// LoadCanonical reads configuration for the standard 3-dimension state.
func LoadCanonical() *Config {
	return Load(state.DimensionCount)
}

// PolicySet builds the policy set described by the dimension configs.
func (c *Config) PolicySet() *policy.PolicySet {
	set := policy.NewPolicySet()
	for _, dim := range c.Dimensions {
		p := policy.NewPolicy(dim.Name).
			WithThreshold(dim.Threshold).
			WithRecovery(ParseRecoveryStrategy(dim.Strategy)).
			WithWeight(dim.Weight)
		if dim.Critical {
			p = p.AsCritical()
		}
		p.Enabled = dim.Enabled
		set.Add(p)
	}
	return set
}

// ParseRecoveryStrategy maps a strategy name to the catalog. Unknown names
// fall back to ImmediateHeal; "custom:<code>" selects a custom strategy.
func ParseRecoveryStrategy(name string) policy.RecoveryStrategy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "monitoronly", "monitor":
		return policy.MonitorOnly
	case "quarantine":
		return policy.Quarantine
	case "fullrecovery", "full":
		return policy.FullRecovery
	}

	if code, ok := strings.CutPrefix(strings.ToLower(name), "custom:"); ok {
		if parsed, err := strconv.ParseUint(code, 10, 32); err == nil {
			return policy.Custom(uint32(parsed))
		}
	}

	return policy.ImmediateHeal
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
