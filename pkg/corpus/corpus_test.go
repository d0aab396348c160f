package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeFriends() *Corpus {
	return &Corpus{Authors: []Author{
		{Name: "goldman", Documents: []string{"free love", "anarchism", "the state"}},
		{Name: "henson", Documents: []string{"the ice", "the ship"}},
		{Name: "wu", Documents: []string{"america", "diplomacy", "tea", "manners"}},
	}}
}

func TestLabelsFollowAuthorBlocks(t *testing.T) {
	c := threeFriends()

	assert.Equal(t, []int{1, 1, 1, 2, 2, 3, 3, 3, 3}, c.Labels())
	assert.Len(t, c.Documents(), 9)
	assert.Equal(t, 9, c.Size())
	assert.Equal(t, "the ice", c.Documents()[3])
	assert.Equal(t, []string{"goldman", "henson", "wu"}, c.Names())
}

func TestAuthorLookup(t *testing.T) {
	c := threeFriends()

	a, ok := c.Author(2)
	require.True(t, ok)
	assert.Equal(t, "henson", a.Name)

	_, ok = c.Author(0)
	assert.False(t, ok)
	_, ok = c.Author(4)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, threeFriends().Validate())

	var nilCorpus *Corpus
	assert.ErrorIs(t, nilCorpus.Validate(), ErrEmptyCorpus)
	assert.ErrorIs(t, (&Corpus{}).Validate(), ErrEmptyCorpus)

	c := threeFriends()
	c.Authors[1].Documents = nil
	assert.ErrorIs(t, c.Validate(), ErrEmptyAuthor)

	c = threeFriends()
	c.Authors[2].Name = "goldman"
	assert.ErrorIs(t, c.Validate(), ErrDuplicateName)

	c = threeFriends()
	c.Authors[0].Name = ""
	assert.Error(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	data := `authors:
  - name: goldman
    documents:
      - "Free love? As if love is anything but free!"
      - "Anarchism stands for liberation."
  - name: henson
    documents:
      - "The ice was packed against the ship."
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"goldman", "henson"}, c.Names())
	assert.Equal(t, []int{1, 1, 2}, c.Labels())
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("authors: [[["), 0644))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("authors: []\n"), 0644))
	_, err = LoadFile(empty)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestSaveFileKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	fs := NewFileSource(path)

	require.NoError(t, fs.Save(context.Background(), threeFriends()))
	c, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, threeFriends(), c)

	assert.ErrorIs(t, SaveFile(path, &Corpus{}), ErrEmptyCorpus)
}
