package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whowrote/authorship/pkg/config"
	"github.com/whowrote/authorship/pkg/corpus"
)

func TestCrossValidate(t *testing.T) {
	a, err := New(config.DefaultConfig(), nil)
	require.NoError(t, err)

	eval, err := a.CrossValidate(sampleCorpus(), 4)
	require.NoError(t, err)

	require.Len(t, eval.Folds, 4)
	assert.Equal(t, 12, eval.Tested)
	for _, f := range eval.Folds {
		assert.Equal(t, 3, f.Test)
		assert.Equal(t, 9, f.Train)
	}

	total := 0
	diagonal := 0
	for i, row := range eval.Confusion {
		for j, n := range row {
			total += n
			if i == j {
				diagonal += n
			}
		}
	}
	assert.Equal(t, eval.Tested, total)
	assert.Equal(t, eval.Correct, diagonal)
	assert.InDelta(t, float64(eval.Correct)/12.0, eval.Accuracy, 1e-12)
	assert.GreaterOrEqual(t, eval.Accuracy, 0.5)

	// The attributor itself stays untrained
	_, err = a.Attribute("the ship")
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestCrossValidateErrors(t *testing.T) {
	a, err := New(nil, nil)
	require.NoError(t, err)

	_, err = a.CrossValidate(sampleCorpus(), 1)
	assert.ErrorIs(t, err, ErrTooFewFolds)

	_, err = a.CrossValidate(&corpus.Corpus{}, 3)
	assert.ErrorIs(t, err, corpus.ErrEmptyCorpus)
}

func TestCrossValidateMoreFoldsThanDocuments(t *testing.T) {
	a, err := New(nil, nil)
	require.NoError(t, err)

	eval, err := a.CrossValidate(sampleCorpus(), 6)
	require.NoError(t, err)

	// Folds 5 and 6 receive no documents and are skipped
	assert.Len(t, eval.Folds, 4)
	assert.Equal(t, 12, eval.Tested)
}

func TestAssignFolds(t *testing.T) {
	c := &corpus.Corpus{Authors: []corpus.Author{
		{Name: "a", Documents: []string{"1", "2", "3"}},
		{Name: "b", Documents: []string{"4", "5"}},
	}}
	assert.Equal(t, []int{0, 1, 0, 0, 1}, assignFolds(c, 2))
}
