package models

import "time"

type Role string

const (
	RoleOwner       Role = "owner"
	RoleManager     Role = "manager"
	RoleParticipant Role = "participant"
)

// rank orders roles by precedence: owner > manager > participant.
func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleParticipant:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.rank() > 0
}

// AtLeast reports whether r is the same as or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.rank() >= min.rank()
}

// CanManage reports whether the role may invite members and change project settings.
func (r Role) CanManage() bool {
	return r.AtLeast(RoleManager)
}

type MembershipStatus string

const (
	MembershipInvited  MembershipStatus = "invited"
	MembershipAccepted MembershipStatus = "accepted"
)

type Membership struct {
	ProjectID string           `db:"project_id" json:"project_id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Role      Role             `db:"role" json:"role"`
	Status    MembershipStatus `db:"status" json:"status"`
	JoinedAt  time.Time        `db:"joined_at" json:"joined_at"`
}

// Member is a membership row joined with the user's profile.
type Member struct {
	ID        string           `db:"id" json:"id"`
	ProjectID string           `db:"project_id" json:"project_id"`
	Name      string           `db:"name" json:"name"`
	Email     string           `db:"email" json:"email"`
	Role      Role             `db:"role" json:"role"`
	Status    MembershipStatus `db:"status" json:"status"`
	JoinedAt  time.Time        `db:"joined_at" json:"joined_at"`
}
