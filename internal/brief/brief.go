// Package brief reads client briefs: an optional header of "Key: value"
// lines with quote parameters followed by the free text to classify.
package brief

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperifyio/cotizador/internal/extract"
	"github.com/hyperifyio/cotizador/internal/textnorm"
)

// ErrEmptyBrief is returned when a brief file holds no text to classify.
var ErrEmptyBrief = errors.New("empty brief")

// Stakeholder labels understood by the pricing catalog.
const (
	StakeholdersOne   = "uno"
	StakeholdersTwo   = "dos"
	StakeholdersThree = "tres_o_mas"
)

// Brief is a parsed client request. Header fields are empty (or zero) when
// the brief does not state them.
type Brief struct {
	Title        string
	Client       string
	ClientType   string
	Urgency      string
	Complexity   string
	Languages    int
	Stakeholders string
	Relationship string
	// Text is the free text the classifier reads, header lines removed.
	Text string
	// Raw is the original input.
	Raw string
}

var (
	headingRe    = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.+?)\s*$`)
	headerLineRe = regexp.MustCompile(`^\s*[-*]?\s*([\p{L} _]{3,30}?)\s*:\s*(.+?)\s*$`)
)

// headerKeys maps normalized header names to the field they set.
var headerKeys = map[string]string{
	"cliente":          "client",
	"empresa":          "client",
	"nombre":           "client",
	"tipo":             "type",
	"tipo de cliente":  "type",
	"urgencia":         "urgency",
	"plazo":            "urgency",
	"complejidad":      "complexity",
	"idiomas":          "languages",
	"decisores":        "stakeholders",
	"stakeholders":     "stakeholders",
	"aprobadores":      "stakeholders",
	"relacion":         "relationship",
	"tipo de relacion": "relationship",
}

// Parse splits input into header fields and free text. Header lines are
// only recognised before the first line of free text; headings may appear
// anywhere and the first one becomes the title. Unknown keys end the header
// and malformed values are ignored.
func Parse(input string) Brief {
	b := Brief{Raw: input}
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var body []string
	var firstText string
	inHeader := true
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !inHeader {
				body = append(body, "")
			}
			continue
		}
		if m := headingRe.FindStringSubmatch(trimmed); len(m) == 2 {
			if b.Title == "" {
				b.Title = stripTrailingPunctuation(m[1])
			}
			body = append(body, trimmed)
			continue
		}
		if inHeader {
			if m := headerLineRe.FindStringSubmatch(trimmed); len(m) == 3 {
				if field, ok := headerKeys[textnorm.Normalize(m[1])]; ok {
					b.set(field, m[2])
					continue
				}
			}
			inHeader = false
		}
		if firstText == "" {
			firstText = trimmed
		}
		body = append(body, line)
	}

	b.Text = strings.TrimSpace(strings.Join(body, "\n"))
	if b.Title == "" {
		b.Title = deriveTitleFromLine(firstText)
	}
	return b
}

func (b *Brief) set(field, value string) {
	switch field {
	case "client":
		b.Client = value
	case "type":
		b.ClientType = value
	case "urgency":
		b.Urgency = value
	case "complexity":
		b.Complexity = value
	case "relationship":
		b.Relationship = value
	case "languages":
		if n, err := strconv.Atoi(value); err == nil && n >= 1 {
			b.Languages = n
		}
	case "stakeholders":
		b.Stakeholders = StakeholderLabel(value)
	}
}

// StakeholderLabel maps a decision-maker count, written as a word or a
// number, to uno, dos or tres_o_mas. It returns "" when value is not a
// recognisable count.
func StakeholderLabel(value string) string {
	v := strings.ReplaceAll(textnorm.Normalize(value), " ", "_")
	switch v {
	case "uno", "una", "1", "un_decisor":
		return StakeholdersOne
	case "dos", "2":
		return StakeholdersTwo
	case "tres_o_mas", "tres", "3+", "mas_de_dos", "varios":
		return StakeholdersThree
	}
	if n, err := strconv.Atoi(v); err == nil {
		switch {
		case n <= 0:
			return ""
		case n == 1:
			return StakeholdersOne
		case n == 2:
			return StakeholdersTwo
		default:
			return StakeholdersThree
		}
	}
	return ""
}

// Load reads a brief from disk. HTML files are reduced to readable text
// first; anything else is read as Markdown or plain text.
func Load(path string) (Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Brief{}, fmt.Errorf("read brief: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses raw brief bytes; ext selects HTML handling for ".html" and
// ".htm".
func Decode(data []byte, ext string) (Brief, error) {
	var b Brief
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		doc := extract.FromHTML(data)
		b = Parse(doc.Text)
		if doc.Title != "" {
			b.Title = doc.Title
		}
	default:
		b = Parse(string(data))
	}
	if strings.TrimSpace(b.Text) == "" {
		return b, ErrEmptyBrief
	}
	return b, nil
}

func deriveTitleFromLine(line string) string {
	if line == "" {
		return ""
	}
	s := strings.Trim(strings.TrimSpace(line), "`*")
	if r := []rune(s); len(r) > 80 {
		s = strings.TrimSpace(string(r[:80])) + "…"
	}
	return stripTrailingPunctuation(s)
}

func stripTrailingPunctuation(s string) string {
	return strings.TrimRight(s, " #:-.")
}
