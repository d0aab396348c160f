package attribution

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/whowrote/authorship/pkg/corpus"
)

// ErrTooFewFolds is returned when cross-validation is asked for fewer than
// two folds.
var ErrTooFewFolds = errors.New("attribution: at least two folds required")

// FoldResult is the outcome of one cross-validation fold.
type FoldResult struct {
	Fold     int     `json:"fold"`
	Train    int     `json:"train"`
	Test     int     `json:"test"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Evaluation is the outcome of k-fold cross-validation.
type Evaluation struct {
	Folds    []FoldResult `json:"folds"`
	Tested   int          `json:"tested"`
	Correct  int          `json:"correct"`
	Accuracy float64      `json:"accuracy"`

	// Confusion[i][j] counts documents of label i+1 predicted as label j+1
	Confusion [][]int `json:"confusion"`
}

// CrossValidate estimates accuracy with k folds. Documents are dealt
// round-robin within each author block, so every fold sees every author
// whenever the author has at least k documents. Each fold trains a fresh
// model; the attributor's own model is left alone.
func (a *Attributor) CrossValidate(c *corpus.Corpus, k int) (*Evaluation, error) {
	if k < 2 {
		return nil, ErrTooFewFolds
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	docs := c.Documents()
	labels := c.Labels()
	folds := assignFolds(c, k)

	n := len(c.Authors)
	eval := &Evaluation{Confusion: make([][]int, n)}
	for i := range eval.Confusion {
		eval.Confusion[i] = make([]int, n)
	}

	for f := 0; f < k; f++ {
		var trainDocs, testDocs []string
		var trainLabels, testLabels []int
		for i, doc := range docs {
			if folds[i] == f {
				testDocs = append(testDocs, doc)
				testLabels = append(testLabels, labels[i])
			} else {
				trainDocs = append(trainDocs, doc)
				trainLabels = append(trainLabels, labels[i])
			}
		}
		if len(testDocs) == 0 || len(trainDocs) == 0 {
			a.logger.Debug("skipping empty fold", zap.Int("fold", f+1))
			continue
		}

		vec, nb, err := a.newModel()
		if err != nil {
			return nil, err
		}
		X, err := vec.FitTransform(trainDocs)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f+1, err)
		}
		if err := nb.Fit(X, trainLabels); err != nil {
			return nil, fmt.Errorf("fold %d: %w", f+1, err)
		}

		Xt, err := vec.Transform(testDocs)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f+1, err)
		}
		predicted, err := nb.Predict(Xt)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f+1, err)
		}

		fr := FoldResult{Fold: f + 1, Train: len(trainDocs), Test: len(testDocs)}
		for i, want := range testLabels {
			got := predicted[i]
			eval.Confusion[want-1][got-1]++
			if got == want {
				fr.Correct++
			}
		}
		fr.Accuracy = float64(fr.Correct) / float64(fr.Test)

		eval.Folds = append(eval.Folds, fr)
		eval.Tested += fr.Test
		eval.Correct += fr.Correct

		a.logger.Debug("fold evaluated",
			zap.Int("fold", fr.Fold),
			zap.Int("test", fr.Test),
			zap.Float64("accuracy", fr.Accuracy))
	}

	if eval.Tested > 0 {
		eval.Accuracy = float64(eval.Correct) / float64(eval.Tested)
	}
	return eval, nil
}

// assignFolds deals each author's documents over k folds in turn, in
// Documents order.
func assignFolds(c *corpus.Corpus, k int) []int {
	folds := make([]int, 0, c.Size())
	for _, author := range c.Authors {
		for j := range author.Documents {
			folds = append(folds, j%k)
		}
	}
	return folds
}
