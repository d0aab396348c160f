package vectorizer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/whowrote/authorship/pkg/tokenizer"
)

var (
	ErrEmptyVocabulary = errors.New("vectorizer: empty vocabulary")
	ErrNotFitted       = errors.New("vectorizer: not fitted")
	ErrNoDocuments     = errors.New("vectorizer: no documents")
)

// CountVectorizer maps documents to token count vectors over a vocabulary
// learned once by Fit.
type CountVectorizer struct {
	mu sync.RWMutex

	tokenizer tokenizer.Tokenizer
	logger    *zap.Logger

	// token -> column, and column -> token
	vocabulary map[string]int
	features   []string
}

// New creates a vectorizer. A nil tokenizer falls back to the default policy.
func New(tok tokenizer.Tokenizer, logger *zap.Logger) *CountVectorizer {
	if tok == nil {
		tok = tokenizer.MustNew(tokenizer.DefaultPolicy())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountVectorizer{
		tokenizer: tok,
		logger:    logger,
	}
}

// Fit learns the vocabulary of docs. Columns are assigned in sorted token
// order. On error the previously learned vocabulary, if any, is kept.
func (cv *CountVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return fmt.Errorf("fit on empty corpus: %w", ErrEmptyVocabulary)
	}

	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, tok := range cv.tokenizer.Tokenize(doc) {
			seen[tok] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return fmt.Errorf("%d documents yielded no tokens: %w", len(docs), ErrEmptyVocabulary)
	}

	features := make([]string, 0, len(seen))
	for tok := range seen {
		features = append(features, tok)
	}
	sort.Strings(features)

	vocabulary := make(map[string]int, len(features))
	for i, tok := range features {
		vocabulary[tok] = i
	}

	cv.mu.Lock()
	cv.vocabulary = vocabulary
	cv.features = features
	cv.mu.Unlock()

	cv.logger.Debug("vocabulary learned",
		zap.Int("documents", len(docs)),
		zap.Int("vocabulary_size", len(features)))

	return nil
}

// Transform returns a len(docs) x Len() matrix of token counts. Tokens that
// are not in the vocabulary are ignored.
func (cv *CountVectorizer) Transform(docs []string) (*mat.Dense, error) {
	cv.mu.RLock()
	vocabulary := cv.vocabulary
	cv.mu.RUnlock()

	if vocabulary == nil {
		return nil, ErrNotFitted
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	counts := mat.NewDense(len(docs), len(vocabulary), nil)
	dropped := 0
	for i, doc := range docs {
		for _, tok := range cv.tokenizer.Tokenize(doc) {
			j, ok := vocabulary[tok]
			if !ok {
				dropped++
				continue
			}
			counts.Set(i, j, counts.At(i, j)+1)
		}
	}

	if dropped > 0 {
		cv.logger.Debug("out-of-vocabulary tokens ignored",
			zap.Int("documents", len(docs)),
			zap.Int("dropped", dropped))
	}

	return counts, nil
}

// FitTransform is Fit followed by Transform on the same documents.
func (cv *CountVectorizer) FitTransform(docs []string) (*mat.Dense, error) {
	if err := cv.Fit(docs); err != nil {
		return nil, err
	}
	return cv.Transform(docs)
}

// IsFitted reports whether a vocabulary has been learned.
func (cv *CountVectorizer) IsFitted() bool {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	return cv.vocabulary != nil
}

// Len returns the vocabulary size, 0 before Fit.
func (cv *CountVectorizer) Len() int {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	return len(cv.features)
}

// Vocabulary returns a copy of the token to column mapping.
func (cv *CountVectorizer) Vocabulary() map[string]int {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	out := make(map[string]int, len(cv.vocabulary))
	for tok, i := range cv.vocabulary {
		out[tok] = i
	}
	return out
}

// FeatureNames returns the tokens in column order.
func (cv *CountVectorizer) FeatureNames() []string {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	out := make([]string, len(cv.features))
	copy(out, cv.features)
	return out
}
