package app

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hyperifyio/cotizador/internal/brief"
	"github.com/hyperifyio/cotizador/internal/textnorm"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = slugRe.ReplaceAllString(textnorm.Normalize(s), "-")
	s = strings.Trim(s, "-")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		s = "cotizacion"
	}
	return s
}

// resolveOutputPath returns out unchanged unless it names a directory, in
// which case the file is named after the client or title plus a short ref.
func resolveOutputPath(out string, b brief.Brief, ref, ext string) string {
	if !isDirTarget(out) {
		return out
	}
	name := b.Client
	if strings.TrimSpace(name) == "" {
		name = b.Title
	}
	short := ref
	if len(short) > 8 {
		short = short[:8]
	}
	file := slugify(name)
	if short != "" {
		file += "-" + short
	}
	return filepath.Join(out, file+ext)
}

func isDirTarget(p string) bool {
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(os.PathSeparator)) {
		return true
	}
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
