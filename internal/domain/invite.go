package domain

import "time"

// InviteKind tells which aggregate an invite token grants access to.
type InviteKind string

const (
	InviteKindHackathon InviteKind = "HACKATHON"
	InviteKindTeam      InviteKind = "TEAM"
)

// InviteToken is the persisted side of a signed invite. Single use is
// enforced through the IsActive flag, claimed with one conditional
// update.
type InviteToken struct {
	ID        string
	Token     string
	Kind      InviteKind
	TargetID  string
	Email     string
	IsActive  bool
	CreatedAt time.Time
}
