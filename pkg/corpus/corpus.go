package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyCorpus   = errors.New("corpus: no authors")
	ErrEmptyAuthor   = errors.New("corpus: author has no documents")
	ErrDuplicateName = errors.New("corpus: duplicate author name")
)

// Author is one labeled block of writing samples.
type Author struct {
	Name      string   `yaml:"name" json:"name"`
	Documents []string `yaml:"documents" json:"documents"`
}

// Corpus is an ordered list of authors. The author at position i carries
// class label i+1, and block sizes always come from the loaded data.
type Corpus struct {
	Authors []Author `yaml:"authors" json:"authors"`
}

// Source loads a corpus from a backend.
type Source interface {
	Load(ctx context.Context) (*Corpus, error)
}

// Sink stores a corpus into a backend, replacing what was there.
type Sink interface {
	Save(ctx context.Context, c *Corpus) error
}

// Validate checks that every author is named, unique and has at least one
// document.
func (c *Corpus) Validate() error {
	if c == nil || len(c.Authors) == 0 {
		return ErrEmptyCorpus
	}
	seen := make(map[string]bool, len(c.Authors))
	for i, a := range c.Authors {
		if a.Name == "" {
			return fmt.Errorf("author %d has no name", i+1)
		}
		if seen[a.Name] {
			return fmt.Errorf("%s: %w", a.Name, ErrDuplicateName)
		}
		seen[a.Name] = true
		if len(a.Documents) == 0 {
			return fmt.Errorf("%s: %w", a.Name, ErrEmptyAuthor)
		}
	}
	return nil
}

// Documents returns every document, author blocks concatenated in order.
func (c *Corpus) Documents() []string {
	var docs []string
	for _, a := range c.Authors {
		docs = append(docs, a.Documents...)
	}
	return docs
}

// Labels returns the class label of every document in Documents order.
func (c *Corpus) Labels() []int {
	var labels []int
	for i, a := range c.Authors {
		for range a.Documents {
			labels = append(labels, i+1)
		}
	}
	return labels
}

// Author returns the author carrying the given label.
func (c *Corpus) Author(label int) (Author, bool) {
	if label < 1 || label > len(c.Authors) {
		return Author{}, false
	}
	return c.Authors[label-1], true
}

// Names returns author names in label order.
func (c *Corpus) Names() []string {
	names := make([]string, len(c.Authors))
	for i, a := range c.Authors {
		names[i] = a.Name
	}
	return names
}

// Size returns the total number of documents.
func (c *Corpus) Size() int {
	n := 0
	for _, a := range c.Authors {
		n += len(a.Documents)
	}
	return n
}

// FileSource reads and writes YAML corpus files.
type FileSource struct {
	Path string
}

// NewFileSource returns a source for the YAML file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads the corpus file.
func (fs *FileSource) Load(_ context.Context) (*Corpus, error) {
	return LoadFile(fs.Path)
}

// Save writes the corpus file.
func (fs *FileSource) Save(_ context.Context, c *Corpus) error {
	return SaveFile(fs.Path, c)
}

// LoadFile parses a YAML corpus file.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %v", err)
	}

	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file %s: %v", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid corpus file %s: %w", path, err)
	}
	return &c, nil
}

// SaveFile writes c as YAML.
func SaveFile(path string, c *Corpus) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal corpus: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write corpus file: %v", err)
	}
	return nil
}

var _ Source = (*FileSource)(nil)
var _ Sink = (*FileSource)(nil)
