// Package manual loads the agency's policy manual and picks the sections that
// are relevant to a client question.
package manual

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	maxKeywordSections  = 3
	maxFallbackSections = 2
	minFallbackWordLen  = 4
)

var sectionBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

// Manual is the in-memory text of the manual, pre-split into sections.
// A nil *Manual behaves like an empty one.
type Manual struct {
	Source   string
	text     string
	sections []string
	folded   []string
}

// New builds a manual from already extracted text.
func New(text, source string) *Manual {
	m := &Manual{Source: source, text: text}
	for _, s := range sectionBreak.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		m.sections = append(m.sections, s)
		m.folded = append(m.folded, fold(s))
	}
	return m
}

// Load reads a .txt or .pdf manual.
func Load(path string) (*Manual, error) {
	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read manual: %w", err)
		}
		text = string(data)
	case ".pdf":
		extracted, err := ExtractPDFText(path)
		if err != nil {
			return nil, err
		}
		text = extracted
	default:
		return nil, fmt.Errorf("unsupported manual format: %s", path)
	}
	return New(text, filepath.Base(path)), nil
}

// LoadFirst loads the first of paths that exists on disk. It returns
// os.ErrNotExist when none do.
func LoadFirst(paths ...string) (*Manual, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		return Load(p)
	}
	return nil, os.ErrNotExist
}

// ExtractPDFText returns the plain text content of a PDF file.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}

// Len is the manual size in characters.
func (m *Manual) Len() int {
	if m == nil {
		return 0
	}
	return len([]rune(m.text))
}

// Text is the full manual text.
func (m *Manual) Text() string {
	if m == nil {
		return ""
	}
	return m.text
}

// Sections returns the blank-line separated sections.
func (m *Manual) Sections() []string {
	if m == nil {
		return nil
	}
	return m.sections
}

// LooksMeaningful reports whether the text mentions any of the terms a
// procedures manual is expected to contain.
func (m *Manual) LooksMeaningful() bool {
	if m == nil {
		return false
	}
	text := fold(m.text)
	for _, w := range []string{"documento", "procedimiento", "comision", "requisito"} {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Relevant returns the sections that answer question, joined by a blank line.
// Sections mentioning a domain keyword the question also uses win (at most three);
// otherwise sections containing any question word longer than three letters
// (at most two). Empty when nothing matches or no manual is loaded.
func (m *Manual) Relevant(question string) string {
	if m == nil || len(m.sections) == 0 {
		return ""
	}

	q := fold(question)
	shared := keywordsIn(q)

	var picked []string
	if len(shared) > 0 {
		for i, s := range m.folded {
			if sharesKeyword(s, shared) {
				picked = append(picked, m.sections[i])
				if len(picked) == maxKeywordSections {
					break
				}
			}
		}
	}
	if len(picked) > 0 {
		return strings.Join(picked, "\n\n")
	}

	words := questionWords(q)
	if len(words) == 0 {
		return ""
	}
	for i, s := range m.folded {
		if containsAny(s, words) {
			picked = append(picked, m.sections[i])
			if len(picked) == maxFallbackSections {
				break
			}
		}
	}
	return strings.Join(picked, "\n\n")
}

func questionWords(q string) []string {
	var words []string
	for _, w := range strings.FieldsFunc(q, isSeparator) {
		if len([]rune(w)) >= minFallbackWordLen {
			words = append(words, w)
		}
	}
	return words
}

func containsAny(text string, values []string) bool {
	for _, v := range values {
		if strings.Contains(text, v) {
			return true
		}
	}
	return false
}
