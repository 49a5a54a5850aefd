package models

// Group represents a set of users sharing expenses.
//
// The client treats membership as read-only: the server adds the creating
// user to a new group automatically, and exactly one group is "selected"
// per session (the first listed, or a freshly auto-provisioned one).
type Group struct {
	// ID is the unique identifier assigned by the server (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group.
	Name string `json:"name"`

	// Members holds the user IDs of the group members. Order carries no
	// meaning.
	Members []int `json:"members"`

	// UpdatedAt is the ISO timestamp of the last server-side change.
	UpdatedAt string `json:"updated_at,omitempty"`

	// IsDeleted marks soft-deleted groups.
	IsDeleted bool `json:"is_deleted,omitempty"`
}
