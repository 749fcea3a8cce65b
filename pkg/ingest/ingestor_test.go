package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselight-labs/leveler/pkg/crypto"
)

func frozenClock() func() time.Time {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("ev-%03d", n)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestPlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "note.txt", "the quick brown fox")

	in := NewIngestor(crypto.NewSHA3Hasher()).WithClock(frozenClock()).WithIDGenerator(sequentialIDs())
	item, err := in.Ingest(context.Background(), path, "laptop-7")
	require.NoError(t, err)

	assert.Equal(t, "ev-001", item.ID)
	assert.Equal(t, "note.txt", item.Name)
	assert.Equal(t, "txt", item.FileType)
	assert.Equal(t, "the quick brown fox", item.Text)
	assert.Equal(t, int64(19), item.SizeBytes)
	assert.Len(t, item.ContentHash, 128)
	assert.Equal(t, crypto.NewSHA3Hasher().Sum([]byte("the quick brown fox")), item.ContentHash)
	assert.Equal(t, "laptop-7", item.Metadata[MetaSourceDevice])
	assert.Equal(t, "note.txt", item.Metadata[MetaFileName])
	assert.NotEmpty(t, item.Metadata[MetaLastModified])
	assert.Equal(t, frozenClock()(), item.CapturedAt)
}

func TestIngestZeroLengthIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "")

	in := NewIngestor(crypto.NewSHA3Hasher())
	_, err := in.Ingest(context.Background(), path, "")
	require.Error(t, err)

	var ingErr *IngestError
	require.ErrorAs(t, err, &ingErr)
	assert.Equal(t, path, ingErr.Path)
	assert.Contains(t, ingErr.Error(), "zero-length")
}

func TestIngestUnreadableIsFatal(t *testing.T) {
	in := NewIngestor(crypto.NewSHA3Hasher())
	_, err := in.Ingest(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), "")

	var ingErr *IngestError
	require.ErrorAs(t, err, &ingErr)
	assert.Contains(t, ingErr.Error(), "unreadable")
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) Extract(_ context.Context, _ string, _ []byte) (string, error) {
	return s.text, s.err
}

func TestIngestDispatchesUnknownFormatToExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", "%PDF-1.4 binaryish")

	in := NewIngestor(crypto.NewSHA3Hasher()).WithExtractor(&stubExtractor{text: "extracted words"})
	item, err := in.Ingest(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "extracted words", item.Text)
	assert.Equal(t, "pdf", item.FileType)
}

func TestIngestExtractorFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scan.pdf", "%PDF-1.4")

	in := NewIngestor(crypto.NewSHA3Hasher()).WithExtractor(&stubExtractor{err: errors.New("ocr offline")})
	_, err := in.Ingest(context.Background(), path, "")

	var ingErr *IngestError
	require.ErrorAs(t, err, &ingErr)
	assert.Contains(t, ingErr.Error(), "extraction failed")
}

func TestIngestNormalizesToNFC(t *testing.T) {
	dir := t.TempDir()
	// "é" as combining sequence e + U+0301.
	path := writeFile(t, dir, "accents.txt", "café")

	in := NewIngestor(crypto.NewSHA3Hasher())
	item, err := in.Ingest(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "café", item.Text)
}

func TestIngestAllPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 10; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("doc-%d.txt", i), fmt.Sprintf("content %d", i)))
	}

	in := NewIngestor(crypto.NewSHA3Hasher()).WithIDGenerator(sequentialIDs())
	items, err := in.IngestAll(context.Background(), paths, "")
	require.NoError(t, err)
	require.Len(t, items, 10)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("doc-%d.txt", i), item.Name)
	}
}

// Ids must follow input order no matter how the worker pool schedules the
// reads; otherwise reruns of the same case could swap ids between exhibits.
func TestIngestAllAssignsIDsInInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 10; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("doc-%d.txt", i), fmt.Sprintf("content %d", i)))
	}

	for run := 0; run < 20; run++ {
		in := NewIngestor(crypto.NewSHA3Hasher()).WithIDGenerator(sequentialIDs())
		items, err := in.IngestAll(context.Background(), paths, "")
		require.NoError(t, err)
		for i, item := range items {
			require.Equal(t, fmt.Sprintf("ev-%03d", i+1), item.ID)
		}
	}
}

func TestIngestRecordsFileTimestamps(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "note.txt", "drafted earlier")

	in := NewIngestor(crypto.NewSHA3Hasher())
	item, err := in.Ingest(context.Background(), path, "")
	require.NoError(t, err)

	_, err = time.Parse(time.RFC3339, item.Metadata[MetaLastModified])
	require.NoError(t, err)

	created := item.Metadata[MetaCreatedAt]
	if created == "" {
		t.Skip("filesystem does not record a creation timestamp")
	}
	ct, err := time.Parse(time.RFC3339, created)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ct, time.Minute)
}

// A modification time far past the creation time must survive ingestion so
// the manipulation analyzer can observe the gap.
func TestIngestPreservesMetadataGap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "note.txt", "revised much later")
	now := time.Now()
	require.NoError(t, os.Chtimes(path, now, now.Add(48*time.Hour)))

	in := NewIngestor(crypto.NewSHA3Hasher())
	item, err := in.Ingest(context.Background(), path, "")
	require.NoError(t, err)

	if item.Metadata[MetaCreatedAt] == "" {
		t.Skip("filesystem does not record a creation timestamp")
	}
	created, err := time.Parse(time.RFC3339, item.Metadata[MetaCreatedAt])
	require.NoError(t, err)
	modified, err := time.Parse(time.RFC3339, item.Metadata[MetaLastModified])
	require.NoError(t, err)
	assert.Greater(t, modified.Sub(created), 24*time.Hour)
}

func TestIngestAllFailsWholeBatchOnOneBadPath(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "ok.txt", "fine"),
		filepath.Join(dir, "missing.txt"),
	}

	in := NewIngestor(crypto.NewSHA3Hasher())
	items, err := in.IngestAll(context.Background(), paths, "")
	require.Error(t, err)
	assert.Nil(t, items)

	var ingErr *IngestError
	require.ErrorAs(t, err, &ingErr)
}
