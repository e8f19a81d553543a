package ingest

import (
	"archive/zip"
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/duynguyendang/termgraph/pkg/thesaurus"
)

// Downloader fetches the raw dump bytes from a fixed source location. The
// actual fetch lives outside this module; the pipeline only consumes the
// stream.
type Downloader interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// ReadDumpFrom fetches the dump through d and parses it.
func ReadDumpFrom(ctx context.Context, d Downloader) ([]thesaurus.Record, int, error) {
	rc, err := d.Fetch(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch dump: %w", err)
	}
	defer rc.Close()
	return ReadDump(rc)
}

// ReadDump parses a flat-file dump from r. Malformed rows are skipped and
// logged, not fatal; the skipped count is returned for the run summary.
func ReadDump(r io.Reader) ([]thesaurus.Record, int, error) {
	scanner := bufio.NewScanner(r)
	// Definition columns can run long; the default token limit is too small.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []thesaurus.Record
	skipped := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		rec, err := thesaurus.ParseRow(raw)
		if err != nil {
			log.Printf("skipping line %d: %v", line, err)
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("failed to read dump: %w", err)
	}
	return records, skipped, nil
}

// ReadDumpFile parses a dump from a local path. Zip archives are opened and
// the first .txt entry inside is used, matching how releases are distributed.
func ReadDumpFile(path string) ([]thesaurus.Record, int, error) {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return readDumpZip(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()
	return ReadDump(f)
}

func readDumpZip(path string) ([]thesaurus.Record, int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open dump archive: %w", err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".txt") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
		}
		defer rc.Close()
		return ReadDump(rc)
	}
	return nil, 0, fmt.Errorf("no .txt entry found in %s", path)
}
