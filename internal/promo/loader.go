package promo

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading gzipped promo files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based promo loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promo-loader").Logger(),
	}
}

// Load reads a gzipped promo file and returns a CodeSet.
// The file is expected to contain one promo code per line.
func (l *fileLoader) Load(ctx context.Context, filePath string) (CodeSet, error) {
	l.logger.Info().Str("file", filePath).Msg("loading promo file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open promo file")
		return nil, fmt.Errorf("failed to open promo file %s: %w", filePath, err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", filePath, err)
	}
	defer gzipReader.Close()

	set := NewMapCodeSet(1024).(*mapCodeSet)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineCount := 0
	for scanner.Scan() {
		// Check context cancellation periodically
		if lineCount%100_000 == 0 {
			select {
			case <-ctx.Done():
				l.logger.Warn().Str("file", filePath).Msg("promo loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			set.Add(line)
			lineCount++
		}
	}

	if err := scanner.Err(); err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading promo file")
		return nil, fmt.Errorf("error reading promo file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("codes_loaded", set.Size()).
		Msg("promo file loaded successfully")

	return set, nil
}
