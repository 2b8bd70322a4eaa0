package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"wanderwise/internal/domain"
)

type CatalogService struct {
	repo          domain.CatalogRepository
	cache         domain.Cache
	images        domain.ImageStore
	cacheTTL      time.Duration
	uploadWorkers int
}

func NewCatalogService(r domain.CatalogRepository, c domain.Cache, img domain.ImageStore, ttl time.Duration, uploadWorkers int) *CatalogService {
	if uploadWorkers < 1 {
		uploadWorkers = 4
	}
	return &CatalogService{repo: r, cache: c, images: img, cacheTTL: ttl, uploadWorkers: uploadWorkers}
}

// Upload is one raw image file attached to a create/update request.
type Upload struct {
	Name string
	Data []byte
}

// ---- reads (cache-aside) ----

func (s *CatalogService) GetPackage(ctx context.Context, id int64) (domain.Package, error) {
	key := fmt.Sprintf("package:%d", id)
	var p domain.Package
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.repo.GetPackage(ctx, id)
	if err != nil {
		return domain.Package{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

// ListPackages returns one page window over the (optionally
// category-filtered) catalog plus the page count for rendering controls.
// An empty catalog or an out-of-range page yields an empty page, never an
// error.
func (s *CatalogService) ListPackages(ctx context.Context, q domain.PackagesQuery) (domain.PackagesPage, error) {
	q.Page, q.Limit, _ = NormalizePage(q.Page, q.Limit)

	key := packagesKey(q)
	var out domain.PackagesPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	pp, err := s.repo.ListPackages(ctx, q)
	if err != nil {
		return domain.PackagesPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array
	cp := domain.PackagesPage{TotalPages: pp.TotalPages}
	if n := len(pp.Items); n > 0 {
		cp.Items = make([]domain.Package, n)
		copy(cp.Items, pp.Items)
	}

	// size guard: don't cache oversized pages
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	key := "categories"
	var cs []domain.Category
	if ok, _ := s.cache.Get(ctx, key, &cs); ok {
		return cs, nil
	}
	cs, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, cs, int(s.cacheTTL.Seconds()))
	return cs, nil
}

// ---- package writes ----

type PackageInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  int64
	Status      domain.PackageStatus
	Features    []string
	Itinerary   []string
}

func (s *CatalogService) CreatePackage(ctx context.Context, in PackageInput, uploads []Upload) (domain.Package, error) {
	if in.Name == "" || in.CategoryID == 0 {
		return domain.Package{}, fmt.Errorf("%w: name and category required", domain.ErrValidation)
	}
	if in.Price < 0 {
		return domain.Package{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
		return domain.Package{}, fmt.Errorf("invalid category id: %w", err)
	}
	if in.Status == "" {
		in.Status = domain.PackageActive
	}

	imgs, err := s.uploadAll(ctx, uploads)
	if err != nil {
		return domain.Package{}, err
	}

	p, err := s.repo.CreatePackage(ctx, domain.Package{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Status:      in.Status,
		Features:    in.Features,
		Itinerary:   in.Itinerary,
		Images:      imgs,
	})
	if err != nil {
		return domain.Package{}, err
	}
	s.invalidatePackages(ctx, p.ID, p.CategoryID)
	return p, nil
}

type PackagePatch struct {
	Name        *string
	Description *string
	Price       *float64
	CategoryID  *int64
	Status      *domain.PackageStatus
	Features    []string
	Itinerary   []string
}

func (s *CatalogService) UpdatePackage(ctx context.Context, id int64, patch PackagePatch, uploads []Upload) (domain.Package, error) {
	p, err := s.repo.GetPackage(ctx, id)
	if err != nil {
		return domain.Package{}, err
	}
	oldCategory := p.CategoryID

	if patch.CategoryID != nil {
		// reject dangling category references up front
		if _, err := s.repo.GetCategory(ctx, *patch.CategoryID); err != nil {
			return domain.Package{}, fmt.Errorf("invalid category id: %w", err)
		}
		p.CategoryID = *patch.CategoryID
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return domain.Package{}, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
		}
		p.Price = *patch.Price
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Features != nil {
		p.Features = patch.Features
	}
	if patch.Itinerary != nil {
		p.Itinerary = patch.Itinerary
	}

	// New uploads replace the whole image set; without uploads the old
	// set is kept as-is.
	if len(uploads) > 0 {
		s.destroyAll(ctx, p.Images)
		imgs, err := s.uploadAll(ctx, uploads)
		if err != nil {
			return domain.Package{}, err
		}
		p.Images = imgs
	}

	if err := s.repo.UpdatePackage(ctx, p); err != nil {
		return domain.Package{}, err
	}
	s.invalidatePackages(ctx, p.ID, oldCategory)
	if p.CategoryID != oldCategory {
		s.invalidatePackages(ctx, p.ID, p.CategoryID)
	}
	return p, nil
}

func (s *CatalogService) DeletePackage(ctx context.Context, id int64) error {
	p, err := s.repo.GetPackage(ctx, id)
	if err != nil {
		return err
	}
	s.destroyAll(ctx, p.Images)
	if err := s.repo.DeletePackage(ctx, id); err != nil {
		return err
	}
	s.invalidatePackages(ctx, id, p.CategoryID)
	return nil
}

// ---- category writes ----

func (s *CatalogService) CreateCategory(ctx context.Context, name string, uploads []Upload) (domain.Category, error) {
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: name required", domain.ErrValidation)
	}
	imgs, err := s.uploadAll(ctx, uploads)
	if err != nil {
		return domain.Category{}, err
	}
	c, err := s.repo.CreateCategory(ctx, domain.Category{Name: name, Images: imgs})
	if err != nil {
		return domain.Category{}, err
	}
	_ = s.cache.Del(ctx, "categories")
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, name *string, uploads []Upload) (domain.Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if name != nil && *name != "" {
		c.Name = *name
	}
	if len(uploads) > 0 {
		s.destroyAll(ctx, c.Images)
		imgs, err := s.uploadAll(ctx, uploads)
		if err != nil {
			return domain.Category{}, err
		}
		c.Images = imgs
	}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	_ = s.cache.Del(ctx, "categories")
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	s.destroyAll(ctx, c.Images)
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Del(ctx, "categories")
	return nil
}

// ---- image fan-out ----

// uploadAll pushes all files to the image store concurrently, bounded by
// uploadWorkers. Order of the result matches the order of the input. One
// failed upload fails the whole operation; already-uploaded files are left
// for the store's own garbage collection.
func (s *CatalogService) uploadAll(ctx context.Context, uploads []Upload) ([]domain.Image, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	imgs := make([]domain.Image, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadWorkers)
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			img, err := s.images.Upload(gctx, up.Name, up.Data)
			if err != nil {
				return fmt.Errorf("upload %s: %w", up.Name, err)
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return imgs, nil
}

// destroyAll is best-effort: a leaked remote image is not worth failing
// the user-facing write.
func (s *CatalogService) destroyAll(ctx context.Context, imgs []domain.Image) {
	for _, img := range imgs {
		if err := s.images.Destroy(ctx, img.PublicID); err != nil {
			log.Warn().Str("public_id", img.PublicID).Err(err).Msg("image destroy failed")
		}
	}
}

func packagesKey(q domain.PackagesQuery) string {
	cat := "all"
	if q.Category != nil {
		cat = fmt.Sprintf("%d", *q.Category)
	}
	return fmt.Sprintf("packages:%s:%d:%d", cat, q.Page, q.Limit)
}

// invalidatePackages drops the cached package plus the first few
// default-limit list pages for its category and the unfiltered listing.
func (s *CatalogService) invalidatePackages(ctx context.Context, id, categoryID int64) {
	_ = s.cache.Del(ctx, fmt.Sprintf("package:%d", id))
	for page := 1; page <= 3; page++ {
		_ = s.cache.Del(ctx, packagesKey(domain.PackagesQuery{Page: page, Limit: DefaultLimit}))
		_ = s.cache.Del(ctx, packagesKey(domain.PackagesQuery{Page: page, Limit: DefaultLimit, Category: &categoryID}))
	}
}
