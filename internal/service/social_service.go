package service

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/repository"
)

// SocialService provides follow-graph business logic.
type SocialService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewSocialService returns a new SocialService.
func NewSocialService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *SocialService {
	return &SocialService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow makes userID follow targetID. Following an already-followed user is
// a no-op.
func (s *SocialService) Follow(ctx context.Context, userID, targetID uint) (*models.User, error) {
	if userID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.followRepo.Create(ctx, userID, targetID); err != nil {
		return nil, err
	}
	return target, nil
}

// Unfollow removes the edge from userID to targetID.
func (s *SocialService) Unfollow(ctx context.Context, userID, targetID uint) (*models.User, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.followRepo.Delete(ctx, userID, targetID); err != nil {
		return nil, err
	}
	return target, nil
}

// IsFollowing reports whether userID follows targetID.
func (s *SocialService) IsFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, userID, targetID)
}

// IsFollowedBy reports whether targetID follows userID.
func (s *SocialService) IsFollowedBy(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, targetID, userID)
}

// Followers returns the users following the given user.
func (s *SocialService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID)
}

// Following returns the users the given user follows.
func (s *SocialService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID)
}

// AttachCounts fills the computed follower/following counts on the user.
func (s *SocialService) AttachCounts(ctx context.Context, user *models.User) error {
	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return err
	}
	user.FollowersCount = int(followers)
	user.FollowingCount = int(following)
	return nil
}
