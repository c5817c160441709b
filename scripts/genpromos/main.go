package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Generates sample promo campaign files for local development.
// Each file holds one promo code per line, gzipped, matching the format
// the back-office uploads to S3.
func main() {
	dataDir := "data/promos"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	promos := map[string][]string{
		"promos1.gz": {
			"PETLOVE10",
			"KASIRDEAL",
			"GRANDOPEN",
		},
		"promos2.gz": {
			"PAWSOME25",
			"GRANDOPEN",
			"LOYALCAT",
		},
	}

	for filename, codes := range promos {
		path := filepath.Join(dataDir, filename)
		if err := writeGzipLines(path, codes); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("Wrote %d codes to %s\n", len(codes), path)
	}
}

func writeGzipLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(gw, line); err != nil {
			return err
		}
	}
	return nil
}
