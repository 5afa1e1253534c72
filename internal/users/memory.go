package users

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/groupchat/groupchat/internal/models"
)

// MemoryRepository is a map-backed Repository used for unit tests and for
// running the service without a MongoDB instance.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.User)}
}

func (m *MemoryRepository) Insert(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	if u.Status == 0 {
		u.Status = 1
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.byID[u.ID] = &cp
	return u, nil
}

func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.byID {
		if u.Email == email && u.IsDeleted == 0 {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.byID[id]; ok && u.IsDeleted == 0 {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *MemoryRepository) List(_ context.Context) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.User, 0, len(m.byID))
	for _, u := range m.byID {
		if u.IsDeleted == 0 {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}
