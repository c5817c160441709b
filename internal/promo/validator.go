package promo

import (
	"context"
	"fmt"
	"sync"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/rs/zerolog"
)

// validator implements Validator over in-memory campaign code sets.
type validator struct {
	codeSets []CodeSet
	logger   zerolog.Logger
	// No mutex needed - code sets are read-only after initialization
}

// ValidatorConfig holds configuration for the promo validator.
type ValidatorConfig struct {
	// FilePaths is the list of campaign file paths to load.
	FilePaths []string
}

// DefaultValidatorConfig returns the default validator configuration.
func DefaultValidatorConfig() *ValidatorConfig {
	return &ValidatorConfig{
		FilePaths: []string{
			"data/promos/promos1.gz",
			"data/promos/promos2.gz",
		},
	}
}

// NewValidator creates a new promo validator.
// It loads all campaign files at initialization time.
func NewValidator(ctx context.Context, config *ValidatorConfig, loader Loader, logger zerolog.Logger) (Validator, error) {
	if config == nil {
		config = DefaultValidatorConfig()
	}

	logger = logger.With().Str("component", "promo-validator").Logger()

	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Msg("initialising promo validator")

	v := &validator{
		codeSets: make([]CodeSet, 0, len(config.FilePaths)),
		logger:   logger,
	}

	// Load all campaign files concurrently
	type loadResult struct {
		index int
		set   CodeSet
		err   error
	}

	resultChan := make(chan loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, filePath := range config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := loader.Load(ctx, path)
			resultChan <- loadResult{
				index: index,
				set:   set,
				err:   err,
			}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in order
	results := make([]loadResult, len(config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load promo file")
			return nil, fmt.Errorf("failed to load promo file %s: %w", config.FilePaths[i], result.err)
		}
		v.codeSets = append(v.codeSets, result.set)
		logger.Info().
			Str("file", config.FilePaths[i]).
			Int("size", result.set.Size()).
			Msg("promo file loaded")
	}

	totalCodes := 0
	for _, set := range v.codeSets {
		totalCodes += set.Size()
	}

	logger.Info().
		Int("total_codes", totalCodes).
		Msg("promo validator initialised successfully")

	return v, nil
}

// Validate checks if a promo code is active.
// An active promo code must:
// - Be between 6 and 12 characters in length
// - Appear in at least one loaded campaign file
func (v *validator) Validate(ctx context.Context, code string) error {
	if len(code) < 6 || len(code) > 12 {
		v.logger.Debug().
			Str("promo_code", code).
			Int("length", len(code)).
			Msg("promo code length invalid")
		return model.ErrInvalidPromoLength
	}

	for _, set := range v.codeSets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if set.Contains(code) {
			v.logger.Debug().Str("promo_code", code).Msg("promo code validated successfully")
			return nil
		}
	}

	v.logger.Debug().
		Str("promo_code", code).
		Msg("promo code not found in any campaign file")
	return model.ErrInvalidPromoCode
}

// Close releases resources held by the validator.
func (v *validator) Close() error {
	// Code sets are garbage collected; nothing to release.
	return nil
}
