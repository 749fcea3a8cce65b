package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/caselight-labs/leveler/pkg/crypto"
)

// maxConcurrentIngests bounds the ingest worker pool.
const maxConcurrentIngests = 10

// TextExtractor converts a non-text format into plain text. Implementations
// for scanned or binary formats (OCR, transcript export) live outside this
// module; the ingestor only dispatches to them.
type TextExtractor interface {
	Extract(ctx context.Context, name string, data []byte) (string, error)
}

// IngestError reports a single document that could not be ingested.
type IngestError struct {
	Path   string
	Reason string
	Err    error
}

func (e *IngestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("ingest %s: %s", e.Path, e.Reason)
}

func (e *IngestError) Unwrap() error { return e.Err }

// passthroughExtensions are treated as plain text.
var passthroughExtensions = map[string]bool{
	".txt":  true,
	".log":  true,
	".md":   true,
	".csv":  true,
	".json": true,
	".eml":  true,
}

// Ingestor turns files or byte blobs into EvidenceItems.
type Ingestor struct {
	hasher    crypto.Hasher
	extractor TextExtractor
	clock     func() time.Time
	idgen     func() string
}

// NewIngestor creates an ingestor with the given content hasher.
func NewIngestor(hasher crypto.Hasher) *Ingestor {
	return &Ingestor{
		hasher: hasher,
		clock:  time.Now,
		idgen:  uuid.NewString,
	}
}

// WithClock overrides the clock for deterministic testing.
func (in *Ingestor) WithClock(clock func() time.Time) *Ingestor {
	in.clock = clock
	return in
}

// WithIDGenerator overrides evidence id generation for deterministic testing.
func (in *Ingestor) WithIDGenerator(idgen func() string) *Ingestor {
	in.idgen = idgen
	return in
}

// WithExtractor installs the extractor used for non-text formats.
func (in *Ingestor) WithExtractor(ex TextExtractor) *Ingestor {
	in.extractor = ex
	return in
}

// Ingest reads one file and normalizes it. Unreadable or zero-length input is
// an *IngestError.
func (in *Ingestor) Ingest(ctx context.Context, path, sourceDeviceHint string) (EvidenceItem, error) {
	return in.ingestPath(ctx, path, sourceDeviceHint, in.idgen())
}

func (in *Ingestor) ingestPath(ctx context.Context, path, sourceDeviceHint, id string) (EvidenceItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EvidenceItem{}, &IngestError{Path: path, Reason: "unreadable file", Err: err}
	}

	extra := map[string]string{}
	if info, err := os.Stat(path); err == nil {
		extra[MetaLastModified] = info.ModTime().UTC().Format(time.RFC3339)
	}
	if created, ok := creationTime(path); ok {
		extra[MetaCreatedAt] = created.UTC().Format(time.RFC3339)
	}

	return in.ingestBytes(ctx, path, filepath.Base(path), data, sourceDeviceHint, extra, id)
}

// IngestBytes normalizes an in-memory blob under the given name.
func (in *Ingestor) IngestBytes(ctx context.Context, name string, data []byte, sourceDeviceHint string) (EvidenceItem, error) {
	return in.ingestBytes(ctx, name, name, data, sourceDeviceHint, nil, in.idgen())
}

func (in *Ingestor) ingestBytes(ctx context.Context, path, name string, data []byte, hint string, extra map[string]string, id string) (EvidenceItem, error) {
	if len(data) == 0 {
		return EvidenceItem{}, &IngestError{Path: path, Reason: "zero-length content"}
	}

	ext := strings.ToLower(filepath.Ext(name))
	text, err := in.extractText(ctx, path, name, ext, data)
	if err != nil {
		return EvidenceItem{}, err
	}

	metadata := map[string]string{
		MetaFileName:  name,
		MetaExtension: ext,
		"size_bytes":  strconv.FormatInt(int64(len(data)), 10),
	}
	if hint != "" {
		metadata[MetaSourceDevice] = hint
	}
	for k, v := range extra {
		metadata[k] = v
	}

	return EvidenceItem{
		ID:          id,
		Name:        name,
		FileType:    strings.TrimPrefix(ext, "."),
		ContentHash: in.hasher.Sum(data),
		SizeBytes:   int64(len(data)),
		CapturedAt:  in.clock().UTC(),
		Metadata:    metadata,
		Text:        norm.NFC.String(text),
	}, nil
}

func (in *Ingestor) extractText(ctx context.Context, path, name, ext string, data []byte) (string, error) {
	if passthroughExtensions[ext] {
		return string(data), nil
	}
	if in.extractor != nil {
		text, err := in.extractor.Extract(ctx, name, data)
		if err != nil {
			return "", &IngestError{Path: path, Reason: "text extraction failed", Err: err}
		}
		return text, nil
	}
	// No extractor installed: accept anything that is already valid text.
	if utf8.Valid(data) {
		return string(data), nil
	}
	return "", &IngestError{Path: path, Reason: fmt.Sprintf("unsupported format %q and no extractor installed", ext)}
}

// IngestAll ingests every path with a bounded worker pool, preserving input
// order. Evidence ids are drawn from the generator in input order before the
// fan-out, so id assignment never depends on worker scheduling and the
// generator is only ever called from one goroutine. The first failure cancels
// the remaining work and is returned whole; no partial evidence set is
// produced.
func (in *Ingestor) IngestAll(ctx context.Context, paths []string, sourceDeviceHint string) ([]EvidenceItem, error) {
	items := make([]EvidenceItem, len(paths))
	ids := make([]string, len(paths))
	for i := range paths {
		ids[i] = in.idgen()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentIngests)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item, err := in.ingestPath(gctx, path, sourceDeviceHint, ids[i])
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
