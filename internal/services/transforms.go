package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/localnerve/transform-studio/internal/metrics"
	"github.com/localnerve/transform-studio/internal/notation"
	"github.com/localnerve/transform-studio/internal/ordered"
	"github.com/localnerve/transform-studio/internal/storage"
)

// ErrPlatform wraps failures talking to the platform.
var ErrPlatform = errors.New("platform request failed")

// Fetcher reads transforms from the platform.
type Fetcher interface {
	BaseURL(tenantID, override string) string
	FetchTransforms(ctx context.Context, baseURL string) ([]*ordered.Map, error)
	FetchTransform(ctx context.Context, baseURL, id string) (*ordered.Map, error)
}

// ListOptions filter and order a transform listing.
type ListOptions struct {
	Refresh bool
	Search  string
	Type    string
	Sort    string // name, type
	Order   string // asc, desc
}

// TransformSummary is one row of a transform listing.
type TransformSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	ReferencedTypes []string `json:"referencedTypes"`
}

// TransformService serves platform transforms through a per-tenant cache.
type TransformService struct {
	Store   storage.Store
	Tenants *TenantService
	Fetcher Fetcher
}

// NewTransformService creates a transform service
func NewTransformService(store storage.Store, tenants *TenantService, fetcher Fetcher) *TransformService {
	return &TransformService{Store: store, Tenants: tenants, Fetcher: fetcher}
}

func (s *TransformService) baseURL(ctx context.Context, tenantID string) (string, error) {
	t, err := s.Tenants.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return s.Fetcher.BaseURL(t.TenantID, t.BaseURL), nil
}

// all returns the cached transforms, fetching them when the cache is empty
// or refresh is set.
func (s *TransformService) all(ctx context.Context, tenantID string, refresh bool) ([]*ordered.Map, error) {
	var cached []*ordered.Map
	if !refresh {
		found, err := loadDocument(ctx, s.Store, transformsKey(tenantID), &cached)
		if err != nil {
			return nil, err
		}
		if found {
			return cached, nil
		}
	}

	base, err := s.baseURL(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	fetched, err := s.Fetcher.FetchTransforms(ctx, base)
	if err != nil {
		log.Printf("Failed to fetch transforms for %s: %v", tenantID, err)
		return nil, fmt.Errorf("%w: %w", ErrPlatform, err)
	}
	if err := saveDocument(ctx, s.Store, transformsKey(tenantID), fetched); err != nil {
		return nil, err
	}
	log.Printf("Cached %d transforms for %s", len(fetched), tenantID)
	return fetched, nil
}

// List summarizes the tenant's transforms.
func (s *TransformService) List(ctx context.Context, tenantID string, opts ListOptions) ([]TransformSummary, error) {
	all, err := s.all(ctx, tenantID, opts.Refresh)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(opts.Search))
	out := []TransformSummary{}
	for _, t := range all {
		sum := summarize(t)
		if opts.Type != "" && sum.Type != opts.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(sum.Name), search) &&
			!strings.Contains(strings.ToLower(sum.ID), search) {
			continue
		}
		out = append(out, sum)
	}

	var less func(a, b TransformSummary) bool
	switch opts.Sort {
	case "name":
		less = func(a, b TransformSummary) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "type":
		less = func(a, b TransformSummary) bool { return a.Type < b.Type }
	}
	if less != nil {
		desc := opts.Order == "desc"
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return less(out[j], out[i])
			}
			return less(out[i], out[j])
		})
	}
	return out, nil
}

func summarize(t *ordered.Map) TransformSummary {
	text := func(key string) string {
		v, _ := t.Get(key)
		s, _ := v.(string)
		return s
	}
	return TransformSummary{
		ID:              text("id"),
		Name:            text("name"),
		Type:            text("type"),
		ReferencedTypes: notation.ReferencedTypes(t),
	}
}

// Get returns one transform. Unless refresh is set it is looked up in the
// cached list, which is fetched first when cold; transforms missing from the
// list are fetched individually.
func (s *TransformService) Get(ctx context.Context, tenantID, transformID string, refresh bool) (*ordered.Map, error) {
	if !refresh {
		cached, err := s.all(ctx, tenantID, false)
		if err != nil {
			return nil, err
		}
		for _, t := range cached {
			if id, _ := t.Get("id"); id == transformID {
				return t, nil
			}
		}
	}

	base, err := s.baseURL(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	t, err := s.Fetcher.FetchTransform(ctx, base, transformID)
	if err != nil {
		return nil, platformError(transformID, err)
	}
	return t, nil
}

// Notation renders one transform and lists the types it references.
func (s *TransformService) Notation(ctx context.Context, tenantID, transformID string, refresh bool) (notation.Record, []string, error) {
	t, err := s.Get(ctx, tenantID, transformID, refresh)
	if err != nil {
		return notation.Record{}, nil, err
	}
	rec := notation.Render(t, 0)
	metrics.Observe(rec)
	return rec, notation.ReferencedTypes(t), nil
}

// statusCoder is implemented by platform errors that carry a status code.
type statusCoder interface {
	error
	StatusCode() int
}

func platformError(transformID string, err error) error {
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() == 404 {
		return fmt.Errorf("transform %s: %w", transformID, ErrNotFound)
	}
	return fmt.Errorf("%w: %w", ErrPlatform, err)
}
