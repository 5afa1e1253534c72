package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/groupchat/groupchat/internal/models"
)

// MemoryRepository is a map-backed Repository used for unit tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	messages map[string]*models.Message
	likes    map[string]*models.MessageLike
	seq      int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		messages: make(map[string]*models.Message),
		likes:    make(map[string]*models.MessageLike),
	}
}

func (m *MemoryRepository) InsertMessage(_ context.Context, msg *models.Message) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	// Nudge timestamps apart so insertion order survives the created_at sort.
	now := time.Now().UTC().Add(time.Duration(m.seq) * time.Microsecond)
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	if msg.Status == 0 {
		msg.Status = 1
	}
	msg.CreatedAt = now
	msg.UpdatedAt = now
	cp := *msg
	m.messages[msg.ID] = &cp
	return msg, nil
}

func (m *MemoryRepository) FindMessageByID(_ context.Context, id string) (*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if msg, ok := m.messages[id]; ok && msg.IsDeleted == 0 {
		cp := *msg
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) MessagesByGroup(_ context.Context, groupID string) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Message{}
	for _, msg := range m.messages {
		if msg.GroupID == groupID && msg.IsDeleted == 0 {
			cp := *msg
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) SetLikeCount(_ context.Context, messageID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[messageID]; ok {
		msg.LikeCount = count
		msg.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MemoryRepository) FindLike(_ context.Context, messageID, userID string) (*models.MessageLike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.likes {
		if l.MessageID == messageID && l.UserID == userID && l.IsDeleted == 0 {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) InsertLike(_ context.Context, l *models.MessageLike) (*models.MessageLike, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = primitive.NewObjectID().Hex()
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	cp := *l
	m.likes[l.ID] = &cp
	return l, nil
}

func (m *MemoryRepository) UpdateLikeStatus(_ context.Context, id string, status int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.likes[id]; ok {
		l.Status = status
		l.UpdatedAt = time.Now().UTC()
	}
	return nil
}
