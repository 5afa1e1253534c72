package groups

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/groupchat/groupchat/internal/models"
)

// MemoryRepository is a map-backed Repository used for unit tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	groups  map[string]*models.Group
	members map[string]*models.GroupMember
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		groups:  make(map[string]*models.Group),
		members: make(map[string]*models.GroupMember),
	}
}

func (m *MemoryRepository) InsertGroup(_ context.Context, g *models.Group) (*models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if g.ID == "" {
		g.ID = primitive.NewObjectID().Hex()
	}
	if g.Status == 0 {
		g.Status = 1
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	cp := *g
	m.groups[g.ID] = &cp
	return g, nil
}

func (m *MemoryRepository) FindGroupByID(_ context.Context, id string) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.groups[id]; ok && g.IsDeleted == 0 {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) FindGroupByIDAndAdmin(_ context.Context, id, adminID string) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.groups[id]; ok && g.IsDeleted == 0 && g.GroupAdminID == adminID {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (m *MemoryRepository) MarkGroupDeleted(_ context.Context, id string) (*models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	g.IsDeleted = 1
	g.UpdatedAt = time.Now().UTC()
	cp := *g
	return &cp, nil
}

func (m *MemoryRepository) SearchGroups(_ context.Context, name string, ids []string) ([]*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var allowed map[string]bool
	if ids != nil {
		allowed = make(map[string]bool, len(ids))
		for _, id := range ids {
			allowed[id] = true
		}
	}
	needle := strings.ToLower(name)
	out := []*models.Group{}
	for _, g := range m.groups {
		if g.IsDeleted != 0 {
			continue
		}
		if allowed != nil && !allowed[g.ID] {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(g.GroupName), needle) {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryRepository) InsertMember(_ context.Context, gm *models.GroupMember) (*models.GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if gm.ID == "" {
		gm.ID = primitive.NewObjectID().Hex()
	}
	if gm.Status == 0 {
		gm.Status = 1
	}
	gm.CreatedAt = now
	gm.UpdatedAt = now
	cp := *gm
	m.members[gm.ID] = &cp
	return gm, nil
}

func (m *MemoryRepository) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, gm := range m.members {
		if gm.GroupID == groupID && gm.UserID == userID && gm.IsDeleted == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) IsAdminMember(_ context.Context, groupID, userID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, gm := range m.members {
		if gm.GroupID == groupID && gm.UserID == userID && gm.IsAdmin == 1 && gm.IsDeleted == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) MemberGroupIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	ids := []string{}
	for _, gm := range m.members {
		if gm.UserID == userID && gm.IsDeleted == 0 && !seen[gm.GroupID] {
			seen[gm.GroupID] = true
			ids = append(ids, gm.GroupID)
		}
	}
	return ids, nil
}

func (m *MemoryRepository) MembersOfGroup(_ context.Context, groupID string) ([]*models.GroupMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.GroupMember{}
	for _, gm := range m.members {
		if gm.GroupID == groupID && gm.IsDeleted == 0 {
			cp := *gm
			out = append(out, &cp)
		}
	}
	return out, nil
}
