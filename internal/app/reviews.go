package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wanderwise/internal/domain"
	"wanderwise/internal/moderation"
)

type ReviewService struct {
	repo      domain.ReviewRepository
	sanitizer *moderation.Sanitizer
	cache     domain.Cache
	cacheTTL  time.Duration
}

func NewReviewService(r domain.ReviewRepository, s *moderation.Sanitizer, c domain.Cache, ttl time.Duration) *ReviewService {
	return &ReviewService{repo: r, sanitizer: s, cache: c, cacheTTL: ttl}
}

type ReviewInput struct {
	UserID    int64
	PackageID int64
	Comment   string
	Rating    int
}

// Create validates, masks the comment, and persists. Blocked terms never
// reject a review; they are masked and the write proceeds. The raw comment
// is not kept anywhere past this call.
func (s *ReviewService) Create(ctx context.Context, in ReviewInput) (domain.Review, error) {
	if in.Rating == 0 || strings.TrimSpace(in.Comment) == "" {
		return domain.Review{}, fmt.Errorf("%w: rating and comment required", domain.ErrValidation)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	if in.UserID == 0 || in.PackageID == 0 {
		return domain.Review{}, fmt.Errorf("%w: user and package required", domain.ErrValidation)
	}

	created, err := s.repo.CreateReview(ctx, domain.Review{
		UserID:    in.UserID,
		PackageID: in.PackageID,
		Comment:   s.sanitizer.Mask(in.Comment),
		Rating:    in.Rating,
	})
	if err != nil {
		return domain.Review{}, err
	}
	s.invalidatePackageReviews(ctx, created.PackageID)
	return created, nil
}

type ReviewPatch struct {
	Comment   *string
	Rating    *int
	PackageID *int64
}

// Update applies only the fields present in the patch. A new comment goes
// through the same masking as on create; a new rating is range-checked.
func (s *ReviewService) Update(ctx context.Context, id int64, patch ReviewPatch) (domain.Review, error) {
	rv, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	oldPackage := rv.PackageID

	if patch.Comment != nil {
		if strings.TrimSpace(*patch.Comment) == "" {
			return domain.Review{}, fmt.Errorf("%w: comment must not be empty", domain.ErrValidation)
		}
		rv.Comment = s.sanitizer.Mask(*patch.Comment)
	}
	if patch.Rating != nil {
		if *patch.Rating < 1 || *patch.Rating > 5 {
			return domain.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
		}
		rv.Rating = *patch.Rating
	}
	if patch.PackageID != nil {
		rv.PackageID = *patch.PackageID
	}

	if err := s.repo.UpdateReview(ctx, rv); err != nil {
		return domain.Review{}, err
	}
	s.invalidatePackageReviews(ctx, oldPackage)
	if rv.PackageID != oldPackage {
		s.invalidatePackageReviews(ctx, rv.PackageID)
	}
	return rv, nil
}

func (s *ReviewService) Get(ctx context.Context, id int64) (domain.Review, error) {
	return s.repo.GetReview(ctx, id)
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	rv, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return err
	}
	s.invalidatePackageReviews(ctx, rv.PackageID)
	return nil
}

// ListForPackage returns one page of a package's reviews, cache-aside.
func (s *ReviewService) ListForPackage(ctx context.Context, packageID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	page, limit, _ := NormalizePage(pg.Page, pg.Limit)
	pg = domain.PageQuery{Page: page, Limit: limit}

	key := reviewsKey(packageID, page, limit)
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rp, err := s.repo.ListPackageReviews(ctx, packageID, pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// copy before caching so callers can't mutate the cached value
	cp := domain.ReviewsPage{TotalPages: rp.TotalPages}
	if n := len(rp.Items); n > 0 {
		cp.Items = make([]domain.Review, n)
		copy(cp.Items, rp.Items)
	}
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// ListAll is the unpaginated admin listing.
func (s *ReviewService) ListAll(ctx context.Context) ([]domain.Review, error) {
	return s.repo.ListReviews(ctx)
}

func reviewsKey(packageID int64, page, limit int) string {
	return fmt.Sprintf("reviews:%d:%d:%d", packageID, page, limit)
}

// invalidatePackageReviews drops the first few default-limit pages, which
// covers the variants the frontend actually requests.
func (s *ReviewService) invalidatePackageReviews(ctx context.Context, packageID int64) {
	for page := 1; page <= 3; page++ {
		_ = s.cache.Del(ctx, reviewsKey(packageID, page, DefaultLimit))
	}
}
