package learning

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// counts for "cat dog", "dog dog", "fish fish" over vocabulary {cat, dog, fish}
func petCorpus() (*mat.Dense, []int) {
	X := mat.NewDense(3, 3, []float64{
		1, 1, 0,
		0, 2, 0,
		0, 0, 2,
	})
	return X, []int{1, 1, 2}
}

func newFitted(t *testing.T, opts ...Option) *MultinomialNB {
	t.Helper()
	nb, err := NewMultinomialNB(opts...)
	require.NoError(t, err)
	X, y := petCorpus()
	require.NoError(t, nb.Fit(X, y))
	return nb
}

func TestFitParameters(t *testing.T) {
	nb := newFitted(t)

	assert.Equal(t, []int{1, 2}, nb.Classes())
	assert.Equal(t, []float64{2, 1}, nb.ClassCount())
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, nb.ClassPrior(), 1e-12)

	// class 1 totals cat=1 dog=3 fish=0, 4 tokens, alpha*|V| = 3
	lp, err := nb.FeatureLogProb(1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Log(2.0 / 7), math.Log(4.0 / 7), math.Log(1.0 / 7)}, lp, 1e-12)

	// class 2 totals fish=2, 2 tokens
	lp, err = nb.FeatureLogProb(2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Log(1.0 / 5), math.Log(1.0 / 5), math.Log(3.0 / 5)}, lp, 1e-12)

	fc, err := nb.FeatureCount(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 0}, fc)

	_, err = nb.FeatureLogProb(7)
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestPredictDominantClass(t *testing.T) {
	nb := newFitted(t)

	query := mat.NewDense(1, 3, []float64{0, 2, 0}) // "dog dog"
	labels, err := nb.Predict(query)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, labels)

	proba, err := nb.PredictProba(query)
	require.NoError(t, err)

	p1 := 2.0 / 3 * (4.0 / 7) * (4.0 / 7)
	p2 := 1.0 / 3 * (1.0 / 5) * (1.0 / 5)
	assert.InDelta(t, p1/(p1+p2), proba.At(0, 0), 1e-12)
	assert.InDelta(t, p2/(p1+p2), proba.At(0, 1), 1e-12)
}

func TestEmptyQueryReturnsPriors(t *testing.T) {
	nb := newFitted(t)

	proba, err := nb.PredictProba(mat.NewDense(1, 3, nil))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1.0 / 3}, mat.Row(nil, 0, proba), 1e-12)
}

func TestUniformPrior(t *testing.T) {
	nb := newFitted(t, WithFitPrior(false))

	assert.InDeltaSlice(t, []float64{0.5, 0.5}, nb.ClassPrior(), 1e-12)
	proba, err := nb.PredictProba(mat.NewDense(1, 3, nil))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, mat.Row(nil, 0, proba), 1e-12)
}

func TestProbaRowsAreDistributions(t *testing.T) {
	nb := newFitted(t)

	X := mat.NewDense(4, 3, []float64{
		0, 0, 0,
		5, 0, 1,
		0, 0, 40,
		300, 300, 0,
	})
	proba, err := nb.PredictProba(X)
	require.NoError(t, err)
	labels, err := nb.Predict(X)
	require.NoError(t, err)

	rows, cols := proba.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 2, cols)
	for r := 0; r < rows; r++ {
		row := mat.Row(nil, r, proba)
		assert.InDelta(t, 1.0, floats.Sum(row), 1e-9)
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
		assert.Equal(t, nb.Classes()[floats.MaxIdx(row)], labels[r], "row %d", r)
	}
}

func TestLogProbaIsStableForLongDocuments(t *testing.T) {
	nb := newFitted(t)

	logProba, err := nb.PredictLogProba(mat.NewDense(1, 3, []float64{0, 1e6, 0}))
	require.NoError(t, err)
	for _, v := range mat.Row(nil, 0, logProba) {
		assert.False(t, math.IsNaN(v))
		assert.LessOrEqual(t, v, 0.0)
	}
}

func TestTiesGoToLowestLabel(t *testing.T) {
	nb, err := NewMultinomialNB()
	require.NoError(t, err)

	X := mat.NewDense(2, 2, []float64{
		1, 1,
		1, 1,
	})
	require.NoError(t, nb.Fit(X, []int{3, 2}))

	labels, err := nb.Predict(mat.NewDense(1, 2, []float64{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, labels)
}

func TestFitErrors(t *testing.T) {
	nb, err := NewMultinomialNB()
	require.NoError(t, err)
	X, _ := petCorpus()

	assert.ErrorIs(t, nb.Fit(X, []int{1, 2}), ErrDimensionMismatch)
	assert.ErrorIs(t, nb.Fit(X, []int{1, 0, 2}), ErrInvalidLabel)

	tests := []struct {
		name string
		X    *mat.Dense
		want error
	}{
		{"negative", mat.NewDense(1, 2, []float64{1, -1}), ErrNegativeCount},
		{"nan", mat.NewDense(2, 2, []float64{math.NaN(), 1, 0, 2}), ErrInvalidCount},
		{"inf", mat.NewDense(2, 2, []float64{1, math.Inf(1), 0, 2}), ErrInvalidCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := make([]int, tt.X.RawMatrix().Rows)
			for i := range y {
				y[i] = i + 1
			}
			assert.ErrorIs(t, nb.Fit(tt.X, y), tt.want)
		})
	}
	assert.False(t, nb.IsFitted())
}

func TestFailedFitKeepsParameters(t *testing.T) {
	nb := newFitted(t)

	X, _ := petCorpus()
	require.ErrorIs(t, nb.Fit(X, []int{1}), ErrDimensionMismatch)
	assert.Equal(t, []int{1, 2}, nb.Classes())
}

func TestRefitReplacesParameters(t *testing.T) {
	nb := newFitted(t)

	require.NoError(t, nb.Fit(mat.NewDense(2, 1, []float64{1, 2}), []int{4, 5}))
	assert.Equal(t, []int{4, 5}, nb.Classes())

	_, err := nb.Predict(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPredictErrors(t *testing.T) {
	nb, err := NewMultinomialNB()
	require.NoError(t, err)

	_, err = nb.Predict(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = nb.PredictProba(mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrNotFitted)

	nb = newFitted(t)
	_, err = nb.PredictProba(mat.NewDense(1, 4, nil))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	tests := []struct {
		name  string
		query []float64
		want  error
	}{
		{"inf", []float64{math.Inf(1), 0, 0}, ErrInvalidCount},
		{"nan", []float64{0, math.NaN(), 1}, ErrInvalidCount},
		{"negative", []float64{-1, 0, 0}, ErrNegativeCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := nb.PredictProba(mat.NewDense(1, 3, tt.query))
			assert.ErrorIs(t, err, tt.want)
			_, err = nb.Predict(mat.NewDense(1, 3, tt.query))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestScore(t *testing.T) {
	nb := newFitted(t)
	X, y := petCorpus()

	acc, err := nb.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	_, err = nb.Score(X, y[:1])
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestAlphaValidation(t *testing.T) {
	_, err := NewMultinomialNB(WithAlpha(-1))
	assert.ErrorIs(t, err, ErrInvalidAlpha)

	_, err = NewMultinomialNB(WithAlpha(math.NaN()))
	assert.ErrorIs(t, err, ErrInvalidAlpha)

	nb, err := NewMultinomialNB(WithAlpha(0))
	require.NoError(t, err)
	assert.Equal(t, minAlpha, nb.Alpha())

	nb, err = NewMultinomialNB(WithAlpha(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, nb.Alpha())
}

func TestConcurrentPredict(t *testing.T) {
	nb := newFitted(t)
	query := mat.NewDense(1, 3, []float64{0, 2, 0})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			labels, err := nb.Predict(query)
			assert.NoError(t, err)
			assert.Equal(t, []int{1}, labels)
		}()
	}
	wg.Wait()
}
