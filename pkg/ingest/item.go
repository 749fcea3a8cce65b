// Package ingest normalizes raw case documents into immutable EvidenceItems:
// content hash, extracted text, and a flat metadata map. It carries no
// analysis logic beyond format dispatch and metadata capture.
package ingest

import "time"

// EvidenceItem is one normalized case document. Immutable once created; owned
// by the case run that created it and discarded with it.
type EvidenceItem struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	FileType    string            `json:"file_type"`
	ContentHash string            `json:"content_hash"`
	SizeBytes   int64             `json:"size_bytes"`
	CapturedAt  time.Time         `json:"captured_at"`
	Metadata    map[string]string `json:"metadata"`
	Text        string            `json:"text"`
}

// Well-known metadata keys.
const (
	MetaFileName     = "file_name"
	MetaExtension    = "extension"
	MetaSourceDevice = "source_device"
	MetaCreatedAt    = "created_at"
	MetaLastModified = "last_modified"
)
