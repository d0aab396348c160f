package attribution

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/whowrote/authorship/pkg/config"
	"github.com/whowrote/authorship/pkg/corpus"
	"github.com/whowrote/authorship/pkg/learning"
	"github.com/whowrote/authorship/pkg/profiler"
	"github.com/whowrote/authorship/pkg/tokenizer"
	"github.com/whowrote/authorship/pkg/vectorizer"
)

// ErrNotTrained is returned when attributing before Train.
var ErrNotTrained = errors.New("attribution: not trained")

// Pipeline stage names recorded in the profiler
const (
	StageFit       = "fit"
	StageTransform = "transform"
	StagePredict   = "predict"
)

// AuthorProbability is the posterior probability of one author.
type AuthorProbability struct {
	Label       int     `json:"label"`
	Author      string  `json:"author"`
	Probability float64 `json:"probability"`
}

// Result is the attribution of one query document.
type Result struct {
	// One entry per author, ascending label order
	Probabilities []AuthorProbability `json:"probabilities"`

	// Most probable author, lowest label on ties
	Label  int    `json:"label"`
	Author string `json:"author"`
}

// Attributor ties a count vectorizer and a multinomial Naive Bayes
// classifier to a labeled corpus.
type Attributor struct {
	mu sync.RWMutex

	config    *config.Config
	logger    *zap.Logger
	tokenizer tokenizer.Tokenizer
	profiler  *profiler.Profiler

	vectorizer *vectorizer.CountVectorizer
	classifier *learning.MultinomialNB
	corpus     *corpus.Corpus

	// accuracy of the model on its own training documents
	trainAccuracy float64
}

// New creates an untrained attributor from cfg.
func New(cfg *config.Config, logger *zap.Logger) (*Attributor, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tok, err := tokenizer.New(cfg.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokenizer: %v", err)
	}

	return &Attributor{
		config:    cfg,
		logger:    logger,
		tokenizer: tok,
		profiler:  profiler.NewProfiler(),
	}, nil
}

// Profiler returns the profiler that times every pipeline stage.
func (a *Attributor) Profiler() *profiler.Profiler {
	return a.profiler
}

func (a *Attributor) newModel() (*vectorizer.CountVectorizer, *learning.MultinomialNB, error) {
	vec := vectorizer.New(a.tokenizer, a.logger)
	nb, err := learning.NewMultinomialNB(
		learning.WithAlpha(a.config.Classifier.Alpha),
		learning.WithFitPrior(a.config.Classifier.FitPrior),
		learning.WithLogger(a.logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return vec, nb, nil
}

// Train learns the vocabulary and the class model from c. The previous
// model, if any, stays in place when training fails.
func (a *Attributor) Train(c *corpus.Corpus) error {
	if err := c.Validate(); err != nil {
		return err
	}

	vec, nb, err := a.newModel()
	if err != nil {
		return err
	}

	docs := c.Documents()
	labels := c.Labels()

	var X *mat.Dense
	err = a.profiler.Measure(StageFit, func() error {
		var err error
		if X, err = vec.FitTransform(docs); err != nil {
			return err
		}
		return nb.Fit(X, labels)
	})
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	accuracy, err := nb.Score(X, labels)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	a.mu.Lock()
	a.vectorizer = vec
	a.classifier = nb
	a.corpus = c
	a.trainAccuracy = accuracy
	a.mu.Unlock()

	for i, author := range c.Authors {
		a.logger.Debug("author block",
			zap.String("author", author.Name),
			zap.Int("label", i+1),
			zap.Int("documents", len(author.Documents)))
	}
	a.logger.Info("model trained",
		zap.Int("authors", len(c.Authors)),
		zap.Int("documents", len(docs)),
		zap.Int("vocabulary_size", vec.Len()),
		zap.Float64("training_accuracy", accuracy))

	return nil
}

func (a *Attributor) model() (*vectorizer.CountVectorizer, *learning.MultinomialNB, *corpus.Corpus, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.classifier == nil || !a.classifier.IsFitted() || !a.vectorizer.IsFitted() {
		return nil, nil, nil, ErrNotTrained
	}
	return a.vectorizer, a.classifier, a.corpus, nil
}

// Attribute scores a single query document.
func (a *Attributor) Attribute(query string) (*Result, error) {
	results, err := a.AttributeAll([]string{query})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// AttributeAll scores every query document.
func (a *Attributor) AttributeAll(queries []string) ([]*Result, error) {
	vec, nb, c, err := a.model()
	if err != nil {
		return nil, err
	}

	var X *mat.Dense
	err = a.profiler.Measure(StageTransform, func() error {
		var err error
		X, err = vec.Transform(queries)
		return err
	})
	if err != nil {
		return nil, err
	}

	var proba *mat.Dense
	err = a.profiler.Measure(StagePredict, func() error {
		var err error
		proba, err = nb.PredictProba(X)
		return err
	})
	if err != nil {
		return nil, err
	}

	classes := nb.Classes()
	results := make([]*Result, len(queries))
	for r := range queries {
		row := mat.Row(nil, r, proba)
		res := &Result{Probabilities: make([]AuthorProbability, len(classes))}
		for i, label := range classes {
			author, _ := c.Author(label)
			res.Probabilities[i] = AuthorProbability{
				Label:       label,
				Author:      author.Name,
				Probability: row[i],
			}
		}
		best := res.Probabilities[floats.MaxIdx(row)]
		res.Label = best.Label
		res.Author = best.Author
		results[r] = res
	}

	return results, nil
}

// TokenWeight describes how characteristic a token is of one author.
type TokenWeight struct {
	Token string `json:"token"`
	Count int    `json:"count"`

	// log P(token|author)
	LogProb float64 `json:"log_prob"`

	// LogProb minus the largest log P(token|other author)
	LogRatio float64 `json:"log_ratio"`
}

// TopTokens returns the n tokens whose likelihood under the given author
// most exceeds their likelihood under any other author.
func (a *Attributor) TopTokens(label, n int) ([]TokenWeight, error) {
	vec, nb, _, err := a.model()
	if err != nil {
		return nil, err
	}

	own, err := nb.FeatureLogProb(label)
	if err != nil {
		return nil, err
	}
	counts, err := nb.FeatureCount(label)
	if err != nil {
		return nil, err
	}

	others := make([]float64, len(own))
	for i := range others {
		others[i] = math.Inf(-1)
	}
	for _, c := range nb.Classes() {
		if c == label {
			continue
		}
		lp, err := nb.FeatureLogProb(c)
		if err != nil {
			return nil, err
		}
		for i, v := range lp {
			others[i] = math.Max(others[i], v)
		}
	}

	names := vec.FeatureNames()
	weights := make([]TokenWeight, 0, len(names))
	for i, tok := range names {
		if counts[i] == 0 {
			continue
		}
		ratio := own[i]
		if !math.IsInf(others[i], -1) {
			ratio -= others[i]
		}
		weights = append(weights, TokenWeight{
			Token:    tok,
			Count:    int(counts[i]),
			LogProb:  own[i],
			LogRatio: ratio,
		})
	}

	sort.SliceStable(weights, func(i, j int) bool {
		if weights[i].LogRatio != weights[j].LogRatio {
			return weights[i].LogRatio > weights[j].LogRatio
		}
		return weights[i].Token < weights[j].Token
	})
	if n > 0 && len(weights) > n {
		weights = weights[:n]
	}
	return weights, nil
}

// Summary describes the trained model.
type Summary struct {
	Authors        []string  `json:"authors"`
	Documents      []int     `json:"documents"`
	Priors         []float64 `json:"priors"`
	VocabularySize int       `json:"vocabulary_size"`
	Alpha          float64   `json:"alpha"`

	// Fraction of training documents the model itself attributes correctly
	TrainingAccuracy float64 `json:"training_accuracy"`
}

// Summary returns per-author sizes and priors of the trained model.
func (a *Attributor) Summary() (*Summary, error) {
	vec, nb, c, err := a.model()
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	accuracy := a.trainAccuracy
	a.mu.RUnlock()

	s := &Summary{
		Authors:          c.Names(),
		Priors:           nb.ClassPrior(),
		VocabularySize:   vec.Len(),
		Alpha:            nb.Alpha(),
		TrainingAccuracy: accuracy,
	}
	for _, n := range nb.ClassCount() {
		s.Documents = append(s.Documents, int(n))
	}
	return s, nil
}
