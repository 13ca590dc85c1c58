package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const groupColumns = "g.id, g.name, g.description, g.created_by, g.created_at, g.updated_at"

// CreateGroup inserts the group row. The caller adds the creator's
// membership in the same transaction.
func (q *queries) CreateGroup(ctx context.Context, group *models.Group) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO expense_groups (id, name, description, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, nullString(group.Description), group.CreatedBy, group.CreatedAt, group.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID. The roster is not loaded.
func (q *queries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM expense_groups g WHERE g.id = ?", groupID)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroupsByMember retrieves all groups the user belongs to.
func (q *queries) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+groupColumns+`
		 FROM expense_groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by member: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// UpdateGroup writes the group's name, description and updated_at.
func (q *queries) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE expense_groups SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		group.Name, nullString(group.Description), group.UpdatedAt, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return requireAffected(res, "group", group.ID)
}

// DeleteGroup removes a group together with its memberships and expenses.
// The children are deleted explicitly rather than relying on the
// foreign-key cascade alone.
func (q *queries) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := q.db.ExecContext(ctx, "DELETE FROM expenses WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete group expenses: %w", err)
	}
	if _, err := q.db.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete group members: %w", err)
	}
	res, err := q.db.ExecContext(ctx, "DELETE FROM expense_groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return requireAffected(res, "group", groupID)
}

// AddMember inserts a membership row.
func (q *queries) AddMember(ctx context.Context, membership *models.Membership) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		membership.GroupID, membership.UserID, membership.JoinedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("membership %s/%s: %w", membership.GroupID, membership.UserID, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row.
func (q *queries) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return requireAffected(res, "membership", groupID+"/"+userID)
}

// IsMember reports whether the user belongs to the group.
func (q *queries) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)",
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// ListMembers returns the roster joined with user profiles, in join order.
func (q *queries) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT m.group_id, m.user_id, m.joined_at, u.email, u.display_name
		 FROM group_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ?
		 ORDER BY m.joined_at, m.rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var displayName sql.NullString
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.JoinedAt, &m.Email, &displayName); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.DisplayName = displayName.String
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func scanGroup(row scanner) (*models.Group, error) {
	group := &models.Group{}
	var description sql.NullString
	if err := row.Scan(&group.ID, &group.Name, &description, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt); err != nil {
		return nil, err
	}
	group.Description = description.String
	return group, nil
}
