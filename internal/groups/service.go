package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/groupchat/groupchat/internal/models"
)

var (
	ErrNotFound      = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrNotGroupAdmin = errors.New("only the group admin can do that")
	ErrAlreadyMember = errors.New("user is already a group member")
	ErrNotMember     = errors.New("user is not a group member")
)

// UserLookup is the slice of the users repository the group service needs to
// validate referenced accounts.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Service implements group lifecycle and membership rules. The creator of a
// group becomes its admin and is enrolled as an admin member; only that admin
// can delete the group or add members.
type Service struct {
	repo  Repository
	users UserLookup
}

func NewService(r Repository, users UserLookup) *Service {
	return &Service{repo: r, users: users}
}

// Membership is a membership record joined with the group it belongs to.
type Membership struct {
	models.GroupMember
	GroupName string `json:"group_name"`
}

// Member is a membership record joined with the member's account details.
type Member struct {
	models.GroupMember
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Add creates a group owned by adminID and enrolls the owner as an admin
// member.
func (s *Service) Add(ctx context.Context, groupName, adminID string) (*models.Group, error) {
	if err := s.requireUser(ctx, adminID); err != nil {
		return nil, err
	}
	g, err := s.repo.InsertGroup(ctx, &models.Group{GroupName: groupName, GroupAdminID: adminID})
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	_, err = s.repo.InsertMember(ctx, &models.GroupMember{
		GroupID: g.ID,
		UserID:  adminID,
		IsAdmin: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("enroll group admin: %w", err)
	}
	return g, nil
}

// Delete soft-deletes a group. The caller must be the group's admin; a group
// owned by someone else looks the same as a missing group.
func (s *Service) Delete(ctx context.Context, groupID, adminID string) (*models.Group, error) {
	if err := s.requireUser(ctx, adminID); err != nil {
		return nil, err
	}
	g, err := s.repo.FindGroupByIDAndAdmin(ctx, groupID, adminID)
	if err != nil {
		return nil, fmt.Errorf("lookup group: %w", err)
	}
	if g == nil {
		return nil, ErrNotFound
	}
	deleted, err := s.repo.MarkGroupDeleted(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("delete group: %w", err)
	}
	return deleted, nil
}

// Search returns the caller's groups whose name contains the query,
// case-insensitively. An empty query matches all of the caller's groups.
func (s *Service) Search(ctx context.Context, groupName, userID string) ([]*models.Group, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.repo.MemberGroupIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	gs, err := s.repo.SearchGroups(ctx, groupName, ids)
	if err != nil {
		return nil, fmt.Errorf("search groups: %w", err)
	}
	return gs, nil
}

// AddMember enrolls userID into the group. Only the group admin may add
// members; adding an existing member fails with ErrAlreadyMember.
func (s *Service) AddMember(ctx context.Context, groupID, userID, callerID string) (*models.GroupMember, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	g, err := s.repo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("lookup group: %w", err)
	}
	if g == nil {
		return nil, ErrNotFound
	}
	isAdmin, err := s.repo.IsAdminMember(ctx, groupID, callerID)
	if err != nil {
		return nil, fmt.Errorf("check admin membership: %w", err)
	}
	if !isAdmin {
		return nil, ErrNotGroupAdmin
	}
	already, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if already {
		return nil, ErrAlreadyMember
	}
	gm, err := s.repo.InsertMember(ctx, &models.GroupMember{GroupID: groupID, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return gm, nil
}

// UserGroups lists the groups the user belongs to, with group names attached.
func (s *Service) UserGroups(ctx context.Context, userID string) ([]Membership, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := s.repo.MemberGroupIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	out := []Membership{}
	for _, id := range ids {
		g, err := s.repo.FindGroupByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lookup group: %w", err)
		}
		if g == nil {
			continue
		}
		ms, err := s.repo.MembersOfGroup(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		for _, gm := range ms {
			if gm.UserID == userID {
				out = append(out, Membership{GroupMember: *gm, GroupName: g.GroupName})
				break
			}
		}
	}
	return out, nil
}

// GroupMembers lists the members of a group. The caller must themselves be a
// member.
func (s *Service) GroupMembers(ctx context.Context, groupID, callerID string) ([]Member, error) {
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	g, err := s.repo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("lookup group: %w", err)
	}
	if g == nil {
		return nil, ErrNotFound
	}
	isMember, err := s.repo.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotMember
	}
	ms, err := s.repo.MembersOfGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]Member, 0, len(ms))
	for _, gm := range ms {
		member := Member{GroupMember: *gm}
		if u, err := s.users.FindByID(ctx, gm.UserID); err == nil && u != nil {
			member.Username = u.Username
			member.Email = u.Email
		}
		out = append(out, member)
	}
	return out, nil
}

// IsMember reports whether userID belongs to groupID. Exposed for the chat
// service, which enforces membership before reads and writes.
func (s *Service) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return s.repo.IsMember(ctx, groupID, userID)
}

func (s *Service) requireUser(ctx context.Context, id string) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}
