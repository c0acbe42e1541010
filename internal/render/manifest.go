package render

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Manifest is the machine-readable sidecar written next to a quote.
type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	BriefSHA256 string    `json:"brief_sha256"`
	Quote       QuoteView `json:"quote"`
}

func computeSHA256Hex(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// NewManifest wraps v with a digest of its brief.
func NewManifest(v QuoteView, now time.Time) Manifest {
	return Manifest{
		GeneratedAt: now.UTC(),
		BriefSHA256: computeSHA256Hex(strings.TrimSpace(v.Brief)),
		Quote:       v,
	}
}

// SidecarPath returns the manifest path for a quote written to outputPath.
func SidecarPath(outputPath string) string {
	return outputPath + ".manifest.json"
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
