package memory

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/greenleaf-garden/storefront/internal/domain"
	apperrors "github.com/greenleaf-garden/storefront/pkg/errors"
	"github.com/greenleaf-garden/storefront/pkg/slug"
)

//go:embed products.json
var seedCatalog []byte

type catalogFile struct {
	Categories []struct {
		Slug string `json:"slug"`
		Name string `json:"name"`
	} `json:"categories"`
	Products []domain.Product `json:"products"`
}

// ProductRepository serves a fixed catalog loaded at startup.
type ProductRepository struct {
	products   []domain.Product
	byID       map[string]int
	bySlug     map[string]int
	categories []domain.Category
}

// NewProductRepository loads the embedded seed catalog.
func NewProductRepository() (*ProductRepository, error) {
	return LoadProductRepository(bytes.NewReader(seedCatalog))
}

// LoadProductRepositoryFile loads a catalog from a JSON file on disk.
func LoadProductRepositoryFile(path string) (*ProductRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return LoadProductRepository(f)
}

// LoadProductRepository reads a catalog document. Products without a slug get
// one generated from their name; duplicate ids or slugs are rejected.
func LoadProductRepository(r io.Reader) (*ProductRepository, error) {
	var file catalogFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	repo := &ProductRepository{
		products: file.Products,
		byID:     make(map[string]int, len(file.Products)),
		bySlug:   make(map[string]int, len(file.Products)),
	}

	counts := make(map[string]int)
	for i := range repo.products {
		p := &repo.products[i]
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("catalog product %d: id and name are required", i)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("catalog product %s: negative price", p.ID)
		}
		if p.Slug == "" {
			p.Slug = slug.Generate(p.Name)
		}
		if _, dup := repo.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %s", p.ID)
		}
		if _, dup := repo.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("catalog: duplicate product slug %s", p.Slug)
		}
		repo.byID[p.ID] = i
		repo.bySlug[p.Slug] = i
		counts[p.Category]++
	}

	for _, c := range file.Categories {
		repo.categories = append(repo.categories, domain.Category{
			Slug:         c.Slug,
			Name:         c.Name,
			ProductCount: counts[c.Slug],
		})
	}

	return repo, nil
}

func (r *ProductRepository) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(r.products))
	for i := range r.products {
		if filter.Matches(&r.products[i]) {
			out = append(out, r.products[i])
		}
	}
	return out, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	p := r.products[i]
	return &p, nil
}

func (r *ProductRepository) GetBySlug(_ context.Context, s string) (*domain.Product, error) {
	i, ok := r.bySlug[strings.ToLower(s)]
	if !ok {
		return nil, apperrors.NotFound("product", s)
	}
	p := r.products[i]
	return &p, nil
}

func (r *ProductRepository) Categories(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, len(r.categories))
	copy(out, r.categories)
	return out, nil
}
