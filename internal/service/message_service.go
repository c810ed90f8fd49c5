package service

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/validation"
)

// MessageService provides warble business logic.
type MessageService struct {
	messageRepo    repository.MessageRepository
	likeRepo       repository.LikeRepository
	allowSelfLikes bool
}

// NewMessageService returns a new MessageService. allowSelfLikes controls
// whether authors may like their own warbles.
func NewMessageService(messageRepo repository.MessageRepository, likeRepo repository.LikeRepository, allowSelfLikes bool) *MessageService {
	return &MessageService{
		messageRepo:    messageRepo,
		likeRepo:       likeRepo,
		allowSelfLikes: allowSelfLikes,
	}
}

// CreateMessage posts a new warble for the given author.
func (s *MessageService) CreateMessage(ctx context.Context, userID uint, text string) (*models.Message, error) {
	if err := validation.ValidateMessageText(text, models.MaxMessageLength); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	message := &models.Message{Text: text, UserID: userID}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return s.messageRepo.GetByID(ctx, message.ID, userID)
}

// GetMessage returns a single warble with its author and like state for the
// viewing user (0 for anonymous).
func (s *MessageService) GetMessage(ctx context.Context, id, currentUserID uint) (*models.Message, error) {
	return s.messageRepo.GetByID(ctx, id, currentUserID)
}

// DeleteMessage removes a warble. Only the author may delete it.
func (s *MessageService) DeleteMessage(ctx context.Context, userID, messageID uint) error {
	message, err := s.messageRepo.GetByID(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if message.UserID != userID {
		return models.NewUnauthorizedError("Access unauthorized.")
	}
	return s.messageRepo.Delete(ctx, messageID)
}

// ToggleLike flips the like state of a warble for the given user and returns
// the message plus whether it is now liked.
func (s *MessageService) ToggleLike(ctx context.Context, userID, messageID uint) (*models.Message, bool, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID, userID)
	if err != nil {
		return nil, false, err
	}
	if message.UserID == userID && !s.allowSelfLikes {
		return nil, false, models.NewValidationError("You cannot like your own warble")
	}

	liked, err := s.likeRepo.IsLiked(ctx, userID, messageID)
	if err != nil {
		return nil, false, err
	}

	if liked {
		if err := s.likeRepo.Unlike(ctx, userID, messageID); err != nil {
			return nil, false, err
		}
	} else {
		if err := s.likeRepo.Like(ctx, userID, messageID); err != nil {
			return nil, false, err
		}
	}
	return message, !liked, nil
}

// Feed returns the home timeline: warbles by the user and everyone they
// follow, newest first.
func (s *MessageService) Feed(ctx context.Context, userID uint, limit int) ([]*models.Message, error) {
	return s.messageRepo.Feed(ctx, userID, limit)
}

// ListByUser returns a user's warbles, newest first.
func (s *MessageService) ListByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Message, error) {
	return s.messageRepo.ListByUser(ctx, userID, limit, offset, currentUserID)
}

// ListAll returns the newest warbles across all users.
func (s *MessageService) ListAll(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	return s.messageRepo.ListAll(ctx, limit, offset)
}

// LikedMessages returns the warbles a user has liked, most recent like first.
func (s *MessageService) LikedMessages(ctx context.Context, userID uint, limit, offset int) ([]*models.Message, error) {
	return s.likeRepo.LikedMessages(ctx, userID, limit, offset)
}
