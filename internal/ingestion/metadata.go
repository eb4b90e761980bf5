package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
	"unicode/utf8"
)

// Source is where a job description came from.
type Source string

// Job description sources.
const (
	SourceText Source = "text"
	SourceFile Source = "file"
	SourceURL  Source = "url"
	SourcePDF  Source = "pdf"
)

// Metadata describes an ingested job description.
type Metadata struct {
	Source    Source `json:"source"`
	URL       string `json:"url,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Rendered  bool   `json:"rendered,omitempty"` // fetched through the headless browser
	Timestamp string `json:"timestamp"`          // RFC3339
	Hash      string `json:"hash"`               // SHA-256 hex digest of the cleaned text
	Chars     int    `json:"chars"`
}

// NewMetadata creates metadata for cleaned content.
func NewMetadata(content string, url string) *Metadata {
	source := SourceText
	if url != "" {
		source = SourceURL
	}
	return &Metadata{
		Source:    source,
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     utf8.RuneCountInString(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
