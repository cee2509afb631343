package models

import "time"

// MembershipStatus represents the state of a membership application
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
	MembershipRejected MembershipStatus = "rejected"
)

// MemberRole represents a user's role within a specific club
type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleLeader MemberRole = "leader"
)

// Membership represents the many-to-many relationship between users and clubs.
// A user has at most one membership record per club. Memberships are
// hard-deleted on removal so the (user, club) pair is freed for a later
// application.
type Membership struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	UserID    uint             `gorm:"not null;uniqueIndex:idx_user_club" json:"user_id"`
	ClubID    uint             `gorm:"not null;uniqueIndex:idx_user_club" json:"club_id"`
	Status    MembershipStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Role      MemberRole       `gorm:"type:varchar(20);default:'member'" json:"role"`
	JoinedAt  *time.Time       `json:"joined_at,omitempty"` // set only on acceptance

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Club Club `gorm:"foreignKey:ClubID" json:"club,omitempty"`
}
