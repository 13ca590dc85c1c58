package models

// Group represents a shared-expense context: a named roster of users and
// the expenses they log against it.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user ID of the creator. Immutable after creation.
	// The creator is always the group's first member.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last name/description change.
	UpdatedAt int64

	// Members is the current roster ordered by join time.
	// Only populated by reads that load the roster.
	Members []Member
}

// Membership associates exactly one user with one group.
// The (GroupID, UserID) pair is unique.
type Membership struct {
	GroupID  string
	UserID   string
	JoinedAt int64
}

// Member is a roster entry: a membership joined with the member's profile.
type Member struct {
	Membership
	Email       string
	DisplayName string
}
