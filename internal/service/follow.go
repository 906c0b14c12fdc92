package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// DefaultRecipesLimit caps the recipe previews attached to a subscription
// view when the client does not ask for a specific limit.
const DefaultRecipesLimit = 3

// FollowService maintains the directed follow graph and its denormalized
// subscription projections.
type FollowService struct {
	db    *gorm.DB
	media MediaStore
}

// NewFollowService creates a new FollowService instance
func NewFollowService(db *gorm.DB, media MediaStore) *FollowService {
	return &FollowService{db: db, media: media}
}

// Follow creates a follow edge and returns the followee's subscription view.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error) {
	var followee models.User
	if err := s.db.WithContext(ctx).First(&followee, "id = ?", followeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if followerID == followee.ID {
		return nil, &ValidationError{Reason: "cannot follow yourself"}
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followee.ID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Reason: "already following"}
	}

	edge := models.FollowEdge{FollowerID: followerID, FolloweeID: followee.ID}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Reason: "already following"}
		}
		return nil, err
	}

	view, err := s.subscriptionView(ctx, followee, recipesLimit)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Unfollow deletes the follow edge. Unfollowing someone never followed is a
// conflict.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	var followee models.User
	if err := s.db.WithContext(ctx).First(&followee, "id = ?", followeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followee.ID).
		Delete(&models.FollowEdge{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &ConflictError{Reason: "not following"}
	}
	return nil
}

// IsFollowing reports whether follower has an edge to followee.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// ListSubscriptions pages through the caller's followees, oldest follow
// first, each with the subscription projection.
func (s *FollowService) ListSubscriptions(ctx context.Context, followerID uuid.UUID, page, limit, recipesLimit int) ([]types.SubscriptionView, error) {
	query := s.db.WithContext(ctx).
		Where("follower_id = ?", followerID).
		Order("created_at")
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	var edges []models.FollowEdge
	if err := query.Find(&edges).Error; err != nil {
		return nil, err
	}

	views := make([]types.SubscriptionView, 0, len(edges))
	for _, edge := range edges {
		var followee models.User
		if err := s.db.WithContext(ctx).First(&followee, "id = ?", edge.FolloweeID).Error; err != nil {
			return nil, err
		}
		view, err := s.subscriptionView(ctx, followee, recipesLimit)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// subscriptionView projects a followee's profile with recipe previews
// (newest first, truncated to recipesLimit) and the untruncated total.
func (s *FollowService) subscriptionView(ctx context.Context, followee models.User, recipesLimit int) (*types.SubscriptionView, error) {
	if recipesLimit <= 0 {
		recipesLimit = DefaultRecipesLimit
	}

	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("author_id = ?", followee.ID).
		Order("created_at DESC").
		Limit(recipesLimit).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	var total int64
	err = s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", followee.ID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	view := &types.SubscriptionView{
		ID:           followee.ID,
		Email:        followee.Email,
		Username:     followee.Username,
		FirstName:    followee.FirstName,
		LastName:     followee.LastName,
		IsSubscribed: true,
		Recipes:      make([]types.RecipeSummary, 0, len(recipes)),
		RecipesCount: total,
	}
	for _, r := range recipes {
		summary, err := summarizeRecipe(ctx, s.media, r)
		if err != nil {
			return nil, err
		}
		view.Recipes = append(view.Recipes, summary)
	}
	return view, nil
}
