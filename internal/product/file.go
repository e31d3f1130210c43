package product

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps products in a YAML file:
//
//	products:
//	  - id: "42"
//	    title: Trail Runner X
//	    description: ...
//
// Updates rewrite the whole file through a temp file and rename.
type FileStore struct {
	Path string

	mu sync.Mutex
}

type fileDoc struct {
	Products []Product `yaml:"products"`
}

// NewFileStore returns a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// List returns every product in file order.
func (s *FileStore) List(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Product{}, err
	}
	for _, p := range doc.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *FileStore) Update(ctx context.Context, id string, u Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	found := false
	for i := range doc.Products {
		if doc.Products[i].ID == id {
			doc.Products[i].Description = u.Description
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.save(doc)
}

func (s *FileStore) load() (fileDoc, error) {
	var doc fileDoc
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return doc, fmt.Errorf("product: read %s: %w", s.Path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("product: parse %s: %w", s.Path, err)
	}
	return doc, nil
}

func (s *FileStore) save(doc fileDoc) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("product: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".products-*.yaml")
	if err != nil {
		return fmt.Errorf("product: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("product: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("product: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("product: replace %s: %w", s.Path, err)
	}
	return nil
}
