package repository

import (
	"context"
	"errors"

	"warbler/internal/cache"
	"warbler/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for warbles.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Message, error)
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Message, error)
	Feed(ctx context.Context, userID uint, limit int) ([]*models.Message, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := r.enrich(ctx, []*models.Message{&message}, currentUserID); err != nil {
		return nil, err
	}
	return &message, nil
}

// Delete removes the message and the likes referencing it in one transaction.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateMessage(ctx, id)
	return nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Message, error) {
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.enrich(ctx, messages, currentUserID); err != nil {
		return nil, err
	}
	return messages, nil
}

// Feed returns the newest warbles from users the given user follows, plus
// their own, newest first.
func (r *messageRepository) Feed(ctx context.Context, userID uint, limit int) ([]*models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? OR user_id IN (?)",
			userID,
			r.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", userID),
		).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.enrich(ctx, messages, userID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.enrich(ctx, messages, 0); err != nil {
		return nil, err
	}
	return messages, nil
}

// enrich fills the computed LikesCount and Liked fields.
func (r *messageRepository) enrich(ctx context.Context, messages []*models.Message, currentUserID uint) error {
	if len(messages) == 0 {
		return nil
	}
	ids := make([]uint, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	type likeCount struct {
		MessageID uint
		Count     int
	}
	var counts []likeCount
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("message_id, COUNT(*) as count").
		Where("message_id IN ?", ids).
		Group("message_id").
		Scan(&counts).Error; err != nil {
		return models.NewInternalError(err)
	}
	countMap := make(map[uint]int, len(counts))
	for _, c := range counts {
		countMap[c.MessageID] = c.Count
	}

	likedMap := make(map[uint]bool)
	if currentUserID != 0 {
		var likedIDs []uint
		if err := r.db.WithContext(ctx).
			Model(&models.Like{}).
			Where("user_id = ? AND message_id IN ?", currentUserID, ids).
			Pluck("message_id", &likedIDs).Error; err != nil {
			return models.NewInternalError(err)
		}
		for _, id := range likedIDs {
			likedMap[id] = true
		}
	}

	for _, m := range messages {
		m.LikesCount = countMap[m.ID]
		m.Liked = likedMap[m.ID]
	}
	return nil
}
