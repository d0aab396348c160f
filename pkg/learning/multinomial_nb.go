package learning

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultAlpha is the additive (Laplace) smoothing constant.
const DefaultAlpha = 1.0

// minAlpha keeps log likelihoods finite when a smaller alpha is requested.
const minAlpha = 1e-10

var (
	ErrNotFitted         = errors.New("learning: classifier not fitted")
	ErrDimensionMismatch = errors.New("learning: dimension mismatch")
	ErrNegativeCount     = errors.New("learning: negative feature count")
	ErrInvalidCount      = errors.New("learning: feature count is not finite")
	ErrInvalidLabel      = errors.New("learning: class labels must be positive")
	ErrInvalidAlpha      = errors.New("learning: alpha must be a non-negative number")
)

// MultinomialNB is a multinomial Naive Bayes classifier over token count
// vectors. Class labels are positive integers; every per-class output is
// ordered by ascending label.
type MultinomialNB struct {
	mu sync.RWMutex

	alpha    float64
	fitPrior bool
	logger   *zap.Logger

	// nil until Fit succeeds, replaced wholesale by later fits
	params *nbParams
}

type nbParams struct {
	classes        []int
	classCount     []float64
	classLogPrior  []float64
	featureCount   *mat.Dense // classes x features
	featureLogProb *mat.Dense // classes x features
}

// Option configures a MultinomialNB.
type Option func(*MultinomialNB)

// WithAlpha sets the smoothing constant.
func WithAlpha(alpha float64) Option {
	return func(nb *MultinomialNB) { nb.alpha = alpha }
}

// WithFitPrior controls whether class priors are learned from label
// frequencies (true, the default) or taken as uniform.
func WithFitPrior(fit bool) Option {
	return func(nb *MultinomialNB) { nb.fitPrior = fit }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(nb *MultinomialNB) {
		if logger != nil {
			nb.logger = logger
		}
	}
}

// NewMultinomialNB creates an unfitted classifier.
func NewMultinomialNB(opts ...Option) (*MultinomialNB, error) {
	nb := &MultinomialNB{
		alpha:    DefaultAlpha,
		fitPrior: true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(nb)
	}

	if math.IsNaN(nb.alpha) || math.IsInf(nb.alpha, 0) || nb.alpha < 0 {
		return nil, fmt.Errorf("alpha %v: %w", nb.alpha, ErrInvalidAlpha)
	}
	if nb.alpha < minAlpha {
		nb.logger.Warn("alpha too small, clamping",
			zap.Float64("alpha", nb.alpha),
			zap.Float64("clamped", minAlpha))
		nb.alpha = minAlpha
	}

	return nb, nil
}

// Alpha returns the smoothing constant in effect.
func (nb *MultinomialNB) Alpha() float64 {
	return nb.alpha
}

// Fit learns class priors and smoothed per-class token likelihoods from the
// count matrix X (documents x features) and its labels y. A failed Fit
// leaves previously fitted parameters untouched.
func (nb *MultinomialNB) Fit(X mat.Matrix, y []int) error {
	rows, cols := X.Dims()
	if rows != len(y) {
		return fmt.Errorf("%d rows but %d labels: %w", rows, len(y), ErrDimensionMismatch)
	}
	if len(y) == 0 {
		return fmt.Errorf("no training documents: %w", ErrDimensionMismatch)
	}
	if cols == 0 {
		return fmt.Errorf("no features: %w", ErrDimensionMismatch)
	}

	index := make(map[int]int)
	var classes []int
	for _, label := range y {
		if label <= 0 {
			return fmt.Errorf("label %d: %w", label, ErrInvalidLabel)
		}
		if _, ok := index[label]; !ok {
			index[label] = 0
			classes = append(classes, label)
		}
	}
	sort.Ints(classes)
	for i, label := range classes {
		index[label] = i
	}

	nClasses := len(classes)
	classCount := make([]float64, nClasses)
	featureCount := mat.NewDense(nClasses, cols, nil)

	for r := 0; r < rows; r++ {
		c := index[y[r]]
		classCount[c]++
		for f := 0; f < cols; f++ {
			v := X.At(r, f)
			if err := checkCount(r, f, v); err != nil {
				return err
			}
			if v != 0 {
				featureCount.Set(c, f, featureCount.At(c, f)+v)
			}
		}
	}

	classLogPrior := make([]float64, nClasses)
	for c := range classLogPrior {
		if nb.fitPrior {
			classLogPrior[c] = math.Log(classCount[c] / float64(rows))
		} else {
			classLogPrior[c] = -math.Log(float64(nClasses))
		}
	}

	featureLogProb := mat.NewDense(nClasses, cols, nil)
	for c := 0; c < nClasses; c++ {
		row := featureCount.RawRowView(c)
		denom := math.Log(floats.Sum(row) + nb.alpha*float64(cols))
		for f, n := range row {
			featureLogProb.Set(c, f, math.Log(n+nb.alpha)-denom)
		}
	}

	params := &nbParams{
		classes:        classes,
		classCount:     classCount,
		classLogPrior:  classLogPrior,
		featureCount:   featureCount,
		featureLogProb: featureLogProb,
	}

	nb.mu.Lock()
	nb.params = params
	nb.mu.Unlock()

	nb.logger.Debug("classifier fitted",
		zap.Int("documents", rows),
		zap.Int("features", cols),
		zap.Ints("classes", classes),
		zap.Float64("alpha", nb.alpha))

	return nil
}

// checkCount rejects entries that cannot be token counts.
func checkCount(r, f int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("row %d column %d is %v: %w", r, f, v, ErrInvalidCount)
	}
	if v < 0 {
		return fmt.Errorf("row %d column %d is %v: %w", r, f, v, ErrNegativeCount)
	}
	return nil
}

// jointLogLikelihood returns log P(c) + sum_t x_t log P(t|c) for every row
// of X and every class.
func (nb *MultinomialNB) jointLogLikelihood(X mat.Matrix) (*mat.Dense, *nbParams, error) {
	nb.mu.RLock()
	p := nb.params
	nb.mu.RUnlock()

	if p == nil {
		return nil, nil, ErrNotFitted
	}

	rows, cols := X.Dims()
	_, features := p.featureLogProb.Dims()
	if cols != features {
		return nil, nil, fmt.Errorf("query has %d features, model has %d: %w", cols, features, ErrDimensionMismatch)
	}

	for r := 0; r < rows; r++ {
		for f := 0; f < cols; f++ {
			if err := checkCount(r, f, X.At(r, f)); err != nil {
				return nil, nil, err
			}
		}
	}

	var jll mat.Dense
	jll.Mul(X, p.featureLogProb.T())
	for r := 0; r < rows; r++ {
		floats.Add(jll.RawRowView(r), p.classLogPrior)
	}
	return &jll, p, nil
}

// Predict returns the most probable label for each row of X. Ties go to
// the lowest label.
func (nb *MultinomialNB) Predict(X mat.Matrix) ([]int, error) {
	jll, p, err := nb.jointLogLikelihood(X)
	if err != nil {
		return nil, err
	}

	rows, _ := jll.Dims()
	labels := make([]int, rows)
	for r := 0; r < rows; r++ {
		// MaxIdx returns the first maximum, classes are ascending
		labels[r] = p.classes[floats.MaxIdx(jll.RawRowView(r))]
	}
	return labels, nil
}

// PredictLogProba returns per-row log posterior probabilities, one column
// per class in ascending label order.
func (nb *MultinomialNB) PredictLogProba(X mat.Matrix) (*mat.Dense, error) {
	jll, _, err := nb.jointLogLikelihood(X)
	if err != nil {
		return nil, err
	}

	rows, _ := jll.Dims()
	for r := 0; r < rows; r++ {
		row := jll.RawRowView(r)
		floats.AddConst(-floats.LogSumExp(row), row)
	}
	return jll, nil
}

// PredictProba returns per-row posterior probabilities, one column per class
// in ascending label order. Each row sums to 1.
func (nb *MultinomialNB) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	logProba, err := nb.PredictLogProba(X)
	if err != nil {
		return nil, err
	}
	logProba.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, logProba)
	return logProba, nil
}

// Score returns the mean accuracy of Predict(X) against y.
func (nb *MultinomialNB) Score(X mat.Matrix, y []int) (float64, error) {
	rows, _ := X.Dims()
	if rows != len(y) {
		return 0, fmt.Errorf("%d rows but %d labels: %w", rows, len(y), ErrDimensionMismatch)
	}
	pred, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := range pred {
		if pred[i] == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y)), nil
}

// IsFitted reports whether Fit has succeeded at least once.
func (nb *MultinomialNB) IsFitted() bool {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return nb.params != nil
}

// Classes returns the learned labels in ascending order.
func (nb *MultinomialNB) Classes() []int {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	if nb.params == nil {
		return nil
	}
	out := make([]int, len(nb.params.classes))
	copy(out, nb.params.classes)
	return out
}

// ClassPrior returns the prior probability of each class, ascending label
// order.
func (nb *MultinomialNB) ClassPrior() []float64 {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	if nb.params == nil {
		return nil
	}
	out := make([]float64, len(nb.params.classLogPrior))
	for i, lp := range nb.params.classLogPrior {
		out[i] = math.Exp(lp)
	}
	return out
}

// ClassCount returns the number of training documents per class.
func (nb *MultinomialNB) ClassCount() []float64 {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	if nb.params == nil {
		return nil
	}
	out := make([]float64, len(nb.params.classCount))
	copy(out, nb.params.classCount)
	return out
}

// FeatureLogProb returns log P(token|class) for every feature column of the
// given class label.
func (nb *MultinomialNB) FeatureLogProb(label int) ([]float64, error) {
	nb.mu.RLock()
	p := nb.params
	nb.mu.RUnlock()

	if p == nil {
		return nil, ErrNotFitted
	}
	for c, l := range p.classes {
		if l == label {
			return mat.Row(nil, c, p.featureLogProb), nil
		}
	}
	return nil, fmt.Errorf("unknown class %d: %w", label, ErrInvalidLabel)
}

// FeatureCount returns the summed token counts of the given class label.
func (nb *MultinomialNB) FeatureCount(label int) ([]float64, error) {
	nb.mu.RLock()
	p := nb.params
	nb.mu.RUnlock()

	if p == nil {
		return nil, ErrNotFitted
	}
	for c, l := range p.classes {
		if l == label {
			return mat.Row(nil, c, p.featureCount), nil
		}
	}
	return nil, fmt.Errorf("unknown class %d: %w", label, ErrInvalidLabel)
}
