package models

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Group represents a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user ID of the group's creator.
	CreatedBy string

	// Members is the list of users in this group with their roles.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is one user's membership in a group.
type Member struct {
	UserID   string
	Role     string
	JoinedAt int64
}

// MemberIDs returns the member user IDs in membership order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
