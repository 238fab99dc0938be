package models

import "time"

type Project struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ProjectSummary is a project as seen by one of its members.
type ProjectSummary struct {
	Project
	OwnerName        string           `db:"owner_name" json:"owner_name"`
	Role             Role             `db:"role" json:"role"`
	MembershipStatus MembershipStatus `db:"membership_status" json:"membership_status"`
	MemberCount      int              `db:"member_count" json:"member_count"`
}

// ProjectPatch carries the settings an owner or manager may change.
type ProjectPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
}

func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.IsActive == nil
}
