package keywords

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer reduces a word to its dictionary base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Extractor turns free text into the ordered lemma tokens used for matching.
type Extractor struct {
	lemmatizer Lemmatizer
	stopWords  map[string]bool
}

// New returns an Extractor backed by the English golem dictionary.
func New() (*Extractor, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemmatizer: %w", err)
	}

	return NewWithLemmatizer(lemmatizer), nil
}

func NewWithLemmatizer(lemmatizer Lemmatizer) *Extractor {
	return &Extractor{
		lemmatizer: lemmatizer,
		stopWords:  defaultStopWords(),
	}
}

// Extract case-folds text and returns its lemmas in original order. Tokens that
// are not purely alphabetic and stop words are dropped; duplicates are kept.
func (e *Extractor) Extract(text string) []string {
	var out []string
	for _, token := range tokenize(strings.ToLower(text)) {
		if !isAlpha(token) || e.stopWords[token] {
			continue
		}

		lemma := token
		if e.lemmatizer != nil {
			if l := strings.ToLower(strings.TrimSpace(e.lemmatizer.Lemma(token))); l != "" {
				lemma = l
			}
		}
		out = append(out, lemma)
	}
	return out
}

// sentencePunct may surround a word without being part of it. Other symbols
// such as '+' and '#' stay on the token, so "c++" and "c#" fail isAlpha.
const sentencePunct = ".,;:!?()[]{}\"'«»“”‘’…"

// tokenize splits on whitespace and hyphen/slash infixes, then trims surrounding sentence punctuation.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '/' || r == '–' || r == '—'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, sentencePunct)
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
