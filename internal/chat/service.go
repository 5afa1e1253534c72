package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/groupchat/groupchat/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrNotMember       = errors.New("user is not a group member")
)

// GroupGuard answers the membership questions the chat service needs before
// letting a user read or write in a group.
type GroupGuard interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
}

// GroupLookup resolves a group id to a live group, or (nil, nil).
type GroupLookup interface {
	FindGroupByID(ctx context.Context, id string) (*models.Group, error)
}

// Service implements message posting, history reads and like toggling.
// Membership in the target group is required for every operation.
type Service struct {
	repo    Repository
	guard   GroupGuard
	grpRepo GroupLookup
}

func NewService(r Repository, guard GroupGuard, groups GroupLookup) *Service {
	return &Service{repo: r, guard: guard, grpRepo: groups}
}

// Send posts a message to the group on behalf of userID.
func (s *Service) Send(ctx context.Context, groupID, userID, text string) (*models.Message, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	msg, err := s.repo.InsertMessage(ctx, &models.Message{
		GroupID: groupID,
		UserID:  userID,
		Message: text,
	})
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// History returns the group's messages oldest first.
func (s *Service) History(ctx context.Context, groupID, userID string) ([]*models.Message, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.MessagesByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// ToggleLike flips userID's like state on the message and keeps the message's
// like counter in step. The first toggle creates a liked record; subsequent
// toggles flip the existing record's status.
func (s *Service) ToggleLike(ctx context.Context, messageID, userID string) (*models.MessageLike, error) {
	msg, err := s.repo.FindMessageByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("lookup message: %w", err)
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	if err := s.requireMember(ctx, msg.GroupID, userID); err != nil {
		return nil, err
	}

	like, err := s.repo.FindLike(ctx, messageID, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup like: %w", err)
	}
	count := msg.LikeCount
	if like == nil {
		like, err = s.repo.InsertLike(ctx, &models.MessageLike{
			MessageID: messageID,
			UserID:    userID,
			Status:    models.LikeStatusLiked,
		})
		if err != nil {
			return nil, fmt.Errorf("insert like: %w", err)
		}
		count++
	} else if like.Status == models.LikeStatusLiked {
		like.Status = models.LikeStatusUnliked
		if err := s.repo.UpdateLikeStatus(ctx, like.ID, like.Status); err != nil {
			return nil, fmt.Errorf("update like: %w", err)
		}
		if count > 0 {
			count--
		}
	} else {
		like.Status = models.LikeStatusLiked
		if err := s.repo.UpdateLikeStatus(ctx, like.ID, like.Status); err != nil {
			return nil, fmt.Errorf("update like: %w", err)
		}
		count++
	}
	if err := s.repo.SetLikeCount(ctx, messageID, count); err != nil {
		return nil, fmt.Errorf("update like count: %w", err)
	}
	return like, nil
}

func (s *Service) requireMember(ctx context.Context, groupID, userID string) error {
	g, err := s.grpRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("lookup group: %w", err)
	}
	if g == nil {
		return ErrGroupNotFound
	}
	ok, err := s.guard.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}
