package ingest

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/duynguyendang/termgraph/pkg/normalize"
	"github.com/duynguyendang/termgraph/pkg/store"
)

func writeDump(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Thesaurus.txt")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func row(fields ...string) string {
	return strings.Join(fields, "\t")
}

func TestRunEndToEnd(t *testing.T) {
	dump := writeDump(t,
		row("C1", "uri", "", "Root", "", "Root", "", "Finding", ""),
		row("C5", "uri", "C1", "Mid|Middle", "", "Mid", "", "Neoplastic Process", ""),
		row("C9", "uri", "C1", "Dead", "", "Dead", "Obsolete_Concept", "Finding", ""),
		"malformed line with no tabs",
	)

	cfg := store.DefaultConfig(t.TempDir())
	cfg.BypassLockGuard = true
	s, err := store.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := Run(s, &normalize.Rules{}, dump); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.Len() != 2 {
		t.Errorf("Len = %d, want 2 (obsolete dropped, malformed skipped)", snap.Len())
	}
	if term, ok := s.LookupTerm("C5"); !ok || term != "Mid" {
		t.Errorf("LookupTerm(C5) = %q, %v; want Mid, true", term, ok)
	}
	if _, ok := snap.Concept("C9"); ok {
		t.Error("obsolete concept C9 entered the store")
	}
	if got := snap.Parents("C5"); len(got) != 1 || got[0] != "C1" {
		t.Errorf("Parents(C5) = %v, want [C1]", got)
	}

	runID, err := s.RunID()
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Error("run ID not recorded")
	}
}

func TestReadDumpSkipsMalformed(t *testing.T) {
	input := strings.Join([]string{
		row("C1", "uri", "", "Foo", "", "Foo", "", "Finding", ""),
		"bogus",
		"",
		row("C2", "uri", "", "Bar", "", "Bar", "", "Finding", ""),
	}, "\n")

	records, skipped, err := ReadDump(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDump failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d, want 2", len(records))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestReadDumpZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Thesaurus.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("Thesaurus.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(row("C1", "uri", "", "Foo", "", "Foo", "", "Finding", "") + "\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	records, skipped, err := ReadDumpFile(path)
	if err != nil {
		t.Fatalf("ReadDumpFile failed: %v", err)
	}
	if len(records) != 1 || skipped != 0 {
		t.Errorf("records = %d, skipped = %d; want 1, 0", len(records), skipped)
	}
	if records[0].Code != "C1" {
		t.Errorf("Code = %q, want C1", records[0].Code)
	}
}

// stubDownloader serves a fixed dump body or a fixed error.
type stubDownloader struct {
	data string
	err  error
}

func (d stubDownloader) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if d.err != nil {
		return nil, d.err
	}
	return io.NopCloser(strings.NewReader(d.data)), nil
}

func TestReadDumpFrom(t *testing.T) {
	body := row("C1", "uri", "", "Foo", "", "Foo", "", "Finding", "") + "\n"
	records, skipped, err := ReadDumpFrom(context.Background(), stubDownloader{data: body})
	if err != nil {
		t.Fatalf("ReadDumpFrom failed: %v", err)
	}
	if len(records) != 1 || skipped != 0 {
		t.Errorf("records = %d, skipped = %d; want 1, 0", len(records), skipped)
	}

	if _, _, err := ReadDumpFrom(context.Background(), stubDownloader{err: fmt.Errorf("source unreachable")}); err == nil {
		t.Fatal("expected error when the fetch fails, got nil")
	}
}

func TestReadDumpFileMissing(t *testing.T) {
	if _, _, err := ReadDumpFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing dump, got nil")
	}
}
