package tokenizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultPattern matches runs of two or more letters, digits or underscores.
// Single-character words such as "a" or "I" never become tokens.
const DefaultPattern = `[\p{L}\p{N}_]{2,}`

// Stop word selections understood by Policy.StopWords.
const (
	StopWordsNone    = "none"
	StopWordsEnglish = "english"
)

// Tokenizer turns raw text into an ordered list of normalized tokens.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Policy describes how text is normalized and split into tokens.
type Policy struct {
	// Regular expression whose matches are the tokens
	Pattern string `yaml:"pattern" json:"pattern"`

	// Case folding and accent removal, applied before matching
	Lowercase    bool `yaml:"lowercase" json:"lowercase"`
	StripAccents bool `yaml:"strip_accents" json:"strip_accents"`

	// "none", "english", or empty when ExtraStopWords is the whole list
	StopWords      string   `yaml:"stop_words" json:"stop_words"`
	ExtraStopWords []string `yaml:"extra_stop_words" json:"extra_stop_words"`

	// Porter2 stemming of every surviving token
	Stem bool `yaml:"stem" json:"stem"`

	// Length bounds in runes, 0 disables the bound
	MinLength int `yaml:"min_length" json:"min_length"`
	MaxLength int `yaml:"max_length" json:"max_length"`
}

// DefaultPolicy returns the bag-of-words defaults: lowercase, no accent
// stripping, no stop words, no stemming.
func DefaultPolicy() Policy {
	return Policy{
		Pattern:   DefaultPattern,
		Lowercase: true,
		StopWords: StopWordsNone,
	}
}

// Validate checks the policy without compiling a tokenizer.
func (p Policy) Validate() error {
	if p.Pattern != "" {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("invalid token pattern %q: %v", p.Pattern, err)
		}
	}
	switch p.StopWords {
	case "", StopWordsNone, StopWordsEnglish:
	default:
		return fmt.Errorf("unknown stop word list: %s", p.StopWords)
	}
	if p.MinLength < 0 || p.MaxLength < 0 {
		return fmt.Errorf("token length bounds must be >= 0")
	}
	if p.MaxLength > 0 && p.MinLength > p.MaxLength {
		return fmt.Errorf("min_length %d exceeds max_length %d", p.MinLength, p.MaxLength)
	}
	return nil
}

// RegexpTokenizer applies a Policy using a compiled regular expression.
type RegexpTokenizer struct {
	policy    Policy
	pattern   *regexp.Regexp
	stopWords map[string]struct{}

	// built-in list, matched case-insensitively
	englishStop map[string]struct{}
}

// New compiles a tokenizer for the given policy.
func New(policy Policy) (*RegexpTokenizer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if policy.Pattern == "" {
		policy.Pattern = DefaultPattern
	}

	rt := &RegexpTokenizer{
		policy:    policy,
		pattern:   regexp.MustCompile(policy.Pattern),
		stopWords: make(map[string]struct{}),
	}

	if policy.StopWords == StopWordsEnglish {
		rt.englishStop = make(map[string]struct{}, len(englishStopWords))
		for _, w := range EnglishStopWords() {
			rt.englishStop[w] = struct{}{}
		}
	}
	for _, w := range policy.ExtraStopWords {
		rt.stopWords[rt.normalize(w)] = struct{}{}
	}

	return rt, nil
}

// MustNew is like New but panics on an invalid policy.
func MustNew(policy Policy) *RegexpTokenizer {
	rt, err := New(policy)
	if err != nil {
		panic(err)
	}
	return rt
}

// Policy returns the policy the tokenizer was built from.
func (rt *RegexpTokenizer) Policy() Policy {
	return rt.policy
}

// Tokenize returns the tokens of text in order of appearance, duplicates kept.
func (rt *RegexpTokenizer) Tokenize(text string) []string {
	matches := rt.pattern.FindAllString(rt.normalize(text), -1)

	tokens := make([]string, 0, len(matches))
	for _, tok := range matches {
		if rt.isStopWord(tok) {
			continue
		}
		if rt.policy.Stem {
			tok = english.Stem(tok, false)
		}
		if !rt.lengthOK(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func (rt *RegexpTokenizer) isStopWord(tok string) bool {
	if _, stop := rt.stopWords[tok]; stop {
		return true
	}
	if rt.englishStop == nil {
		return false
	}
	if !rt.policy.Lowercase {
		tok = strings.ToLower(tok)
	}
	_, stop := rt.englishStop[tok]
	return stop
}

func (rt *RegexpTokenizer) normalize(text string) string {
	if rt.policy.StripAccents {
		// the chained transformer keeps state, so one is built per call
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		if out, _, err := transform.String(t, text); err == nil {
			text = out
		}
	}
	if rt.policy.Lowercase {
		text = strings.ToLower(text)
	}
	return text
}

func (rt *RegexpTokenizer) lengthOK(tok string) bool {
	n := len([]rune(tok))
	if n == 0 {
		return false
	}
	if rt.policy.MinLength > 0 && n < rt.policy.MinLength {
		return false
	}
	if rt.policy.MaxLength > 0 && n > rt.policy.MaxLength {
		return false
	}
	return true
}
