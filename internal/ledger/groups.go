package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// NewGroup is the input to CreateGroup.
type NewGroup struct {
	Name        string
	Description string
}

// GroupPatch edits a group. Nil fields are left unchanged; an empty
// Description clears it.
type GroupPatch struct {
	Name        *string
	Description *string
}

// CreateGroup creates a group owned by creatorID. The group row and the
// creator's membership are written in one transaction, so a group never
// exists without its creator on the roster.
func (l *Ledger) CreateGroup(ctx context.Context, creatorID string, in NewGroup) (*models.Group, error) {
	name, err := l.validateGroupName(in.Name)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if err := checkLength("description", description, l.limits.MaxGroupDescriptionLength); err != nil {
		return nil, err
	}

	now := l.now().Unix()
	group := &models.Group{
		ID:          l.newID(),
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = l.store.WithTx(ctx, func(q storage.Queries) error {
		if _, err := q.GetUserByID(ctx, creatorID); err != nil {
			return notFound(err, "user "+creatorID)
		}
		if err := q.CreateGroup(ctx, group); err != nil {
			return err
		}
		if err := q.AddMember(ctx, &models.Membership{GroupID: group.ID, UserID: creatorID, JoinedAt: now}); err != nil {
			return err
		}
		group.Members, err = q.ListMembers(ctx, group.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Group created", "group_id", group.ID, "user_id", creatorID)
	return group, nil
}

// GetGroup returns a group with its roster in join order.
func (l *Ledger) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group *models.Group
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		var err error
		group, err = loadGroup(ctx, q, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListUserGroups returns every group the user currently belongs to,
// each with its roster.
func (l *Ledger) ListUserGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	var groups []*models.Group
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		var err error
		groups, err = q.ListGroupsByMember(ctx, userID)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if g.Members, err = q.ListMembers(ctx, g.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateGroup applies a partial edit. Any member may edit; the edit is not
// restricted to the creator.
func (l *Ledger) UpdateGroup(ctx context.Context, groupID string, patch GroupPatch, requestedBy string) (*models.Group, error) {
	var group *models.Group
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		if err := requireMember(ctx, q, groupID, requestedBy); err != nil {
			return err
		}

		g, err := q.GetGroup(ctx, groupID)
		if err != nil {
			return notFound(err, "group "+groupID)
		}

		if patch.Name != nil {
			if g.Name, err = l.validateGroupName(*patch.Name); err != nil {
				return err
			}
		}
		if patch.Description != nil {
			description := strings.TrimSpace(*patch.Description)
			if err := checkLength("description", description, l.limits.MaxGroupDescriptionLength); err != nil {
				return err
			}
			g.Description = description
		}

		g.UpdatedAt = l.now().Unix()
		if err := q.UpdateGroup(ctx, g); err != nil {
			return err
		}
		if g.Members, err = q.ListMembers(ctx, groupID); err != nil {
			return err
		}
		group = g
		return nil
	})
	if err != nil {
		l.logDenied("UpdateGroup", err, "group_id", groupID, "user_id", requestedBy)
		return nil, err
	}

	l.logger.Info("Group updated", "group_id", groupID, "user_id", requestedBy)
	return group, nil
}

// DeleteGroup removes a group with all of its memberships and expenses.
// Only the creator may delete.
func (l *Ledger) DeleteGroup(ctx context.Context, groupID, requestedBy string) error {
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		group, err := q.GetGroup(ctx, groupID)
		if err != nil {
			return notFound(err, "group "+groupID)
		}
		if group.CreatedBy != requestedBy {
			return unauthorizedf("only the creator may delete group %s", groupID)
		}
		return notFound(q.DeleteGroup(ctx, groupID), "group "+groupID)
	})
	if err != nil {
		l.logDenied("DeleteGroup", err, "group_id", groupID, "user_id", requestedBy)
		return err
	}

	l.logger.Info("Group deleted", "group_id", groupID, "user_id", requestedBy)
	return nil
}

// AddMember puts newUserID on the roster. The requester must already be a
// member. Adding an existing member returns ErrConflict and changes nothing.
func (l *Ledger) AddMember(ctx context.Context, groupID, newUserID, requestedBy string) (*models.Membership, error) {
	membership := &models.Membership{GroupID: groupID, UserID: newUserID}
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		if err := requireMember(ctx, q, groupID, requestedBy); err != nil {
			return err
		}
		if _, err := q.GetUserByID(ctx, newUserID); err != nil {
			return notFound(err, "user "+newUserID)
		}

		already, err := q.IsMember(ctx, groupID, newUserID)
		if err != nil {
			return err
		}
		if already {
			return fmt.Errorf("%w: user %s is already a member", ErrConflict, newUserID)
		}

		membership.JoinedAt = l.now().Unix()
		return q.AddMember(ctx, membership)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		err = fmt.Errorf("%w: user %s is already a member", ErrConflict, newUserID)
	}
	if err != nil {
		l.logDenied("AddMember", err, "group_id", groupID, "user_id", requestedBy)
		return nil, err
	}

	l.logger.Info("Member added", "group_id", groupID, "user_id", newUserID, "added_by", requestedBy)
	return membership, nil
}

// RemoveMember takes targetUserID off the roster. A member may remove only
// themselves; the creator may remove anyone.
func (l *Ledger) RemoveMember(ctx context.Context, groupID, targetUserID, requestedBy string) error {
	err := l.store.WithTx(ctx, func(q storage.Queries) error {
		if err := requireMember(ctx, q, groupID, requestedBy); err != nil {
			return err
		}
		if targetUserID != requestedBy {
			group, err := q.GetGroup(ctx, groupID)
			if err != nil {
				return notFound(err, "group "+groupID)
			}
			if group.CreatedBy != requestedBy {
				return unauthorizedf("only the creator may remove other members")
			}
		}
		return notFound(q.RemoveMember(ctx, groupID, targetUserID), "membership")
	})
	if err != nil {
		l.logDenied("RemoveMember", err, "group_id", groupID, "user_id", requestedBy)
		return err
	}

	l.logger.Info("Member removed", "group_id", groupID, "user_id", targetUserID, "removed_by", requestedBy)
	return nil
}

func (l *Ledger) validateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationf("group name is required")
	}
	if err := checkLength("group name", name, l.limits.MaxGroupNameLength); err != nil {
		return "", err
	}
	return name, nil
}

// loadGroup reads a group and its roster through q.
func loadGroup(ctx context.Context, q storage.Queries, groupID string) (*models.Group, error) {
	group, err := q.GetGroup(ctx, groupID)
	if err != nil {
		return nil, notFound(err, "group "+groupID)
	}
	if group.Members, err = q.ListMembers(ctx, groupID); err != nil {
		return nil, err
	}
	return group, nil
}
