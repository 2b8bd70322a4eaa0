package app

import (
	"context"
	"fmt"

	"wanderwise/internal/domain"
)

type UserService struct {
	repo   domain.UserRepository
	images domain.ImageStore
}

func NewUserService(r domain.UserRepository, img domain.ImageStore) *UserService {
	return &UserService{repo: r, images: img}
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

type UserPatch struct {
	Name   *string
	Email  *string
	Role   *domain.Role
	Status *string
}

// Update is the admin path; it may change role and status.
func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (domain.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		if *patch.Role != domain.RoleUser && *patch.Role != domain.RoleAdmin {
			return domain.User{}, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *patch.Role)
		}
		u.Role = *patch.Role
	}
	if patch.Status != nil {
		u.Status = *patch.Status
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UpdateProfile is the self-service path: name, email and an optional new
// profile image. Role and status never change here.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, name, email *string, avatar *Upload) (domain.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if name != nil && *name != "" {
		u.Name = *name
	}
	if email != nil && *email != "" {
		u.Email = *email
	}
	if avatar != nil {
		img, err := s.images.Upload(ctx, avatar.Name, avatar.Data)
		if err != nil {
			return domain.User{}, err
		}
		u.ProfileImage = &img.URL
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteUser(ctx, id)
}
