// Package llm wraps the Gemini API behind a small client interface: one-shot
// JSON generation, streamed chat replies and PDF transcription, each run on
// a model tier.
package llm

import (
	"maps"
	"os"
)

// ModelTier selects a model by how much reasoning a call needs.
type ModelTier string

const (
	// TierLite runs the per-turn document extraction.
	TierLite ModelTier = "lite"
	// TierStandard runs coaching replies, job analysis and PDF transcription.
	TierStandard ModelTier = "standard"
)

// Provider names a model API.
type Provider string

// ProviderGemini is the only provider the client speaks.
const ProviderGemini Provider = "gemini"

// Config maps tiers to model names.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the Gemini models used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
}

// GetModel returns the model for tier. An unconfigured tier falls back to
// the standard model, then the lite one.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	return c.Models[TierLite]
}

// WithModel returns a copy of c that uses model for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	models := maps.Clone(c.Models)
	if models == nil {
		models = make(map[ModelTier]string)
	}
	models[tier] = model
	return &Config{Provider: c.Provider, Models: models}
}

// Environment variables that override the model for a tier.
const (
	EnvModelLite     = "STAR_COACH_MODEL_LITE"
	EnvModelStandard = "STAR_COACH_MODEL_STANDARD"
)

// ConfigFromEnv returns the default configuration with any per-tier model
// overrides found in the environment applied.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	for tier, key := range map[ModelTier]string{
		TierLite:     EnvModelLite,
		TierStandard: EnvModelStandard,
	} {
		if model := os.Getenv(key); model != "" {
			cfg = cfg.WithModel(tier, model)
		}
	}
	return cfg
}
