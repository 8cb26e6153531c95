package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned at record creation
	RoleUser UserRole = "user"
	// RoleAdmin can reach the admin surface
	RoleAdmin UserRole = "admin"
	// RoleTechnician can reach the technician surface
	RoleTechnician UserRole = "technician"
)

// ProviderKind identifies how an identity was established.
type ProviderKind = string

const (
	ProviderEmail    ProviderKind = "email"
	ProviderGoogle   ProviderKind = "google"
	ProviderFacebook ProviderKind = "facebook"
)

// UserRecord is the persisted user document. UID is the opaque provider
// identifier and is immutable once created; ID is a deterministic uuid
// derived from it so the record can live in uuid-keyed stores. Role is
// never escalated by this package; escalation is an administrative action
// on the directory itself.
type UserRecord struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UID           string       `bun:"uid,notnull,unique" json:"uid,omitempty"`
	Email         string       `bun:"email" json:"email,omitempty"`
	DisplayName   string       `bun:"display_name" json:"display_name,omitempty"`
	Role          UserRole     `bun:"user_role,notnull" json:"user_role,omitempty"`
	Provider      ProviderKind `bun:"provider,notnull" json:"provider,omitempty"`
	EmailVerified bool         `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	PhotoURL      string       `bun:"photo_url" json:"photo_url,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	LastLoginAt   *time.Time   `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
}

// EnsureDefaults backfills the role and provider tag on records built from
// partial provider data.
func (u *UserRecord) EnsureDefaults() {
	if u == nil {
		return
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Provider == "" {
		u.Provider = ProviderEmail
	}
}

// Clone returns a deep copy so published snapshots cannot be mutated by
// observers.
func (u *UserRecord) Clone() *UserRecord {
	if u == nil {
		return nil
	}
	clone := *u
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		clone.CreatedAt = &t
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		clone.LastLoginAt = &t
	}
	return &clone
}

// DisplayNameFallback is used when the provider supplies no display name
// for a synthesized record.
const DisplayNameFallback = "User"

// NewRecordFromIdentity synthesizes the default record for an identity the
// directory has never seen: role user, provider tag from the first linked
// identity, verification flag mirroring the live provider value.
func NewRecordFromIdentity(identity *Identity) *UserRecord {
	if identity == nil {
		return nil
	}

	name := identity.DisplayName
	if name == "" {
		name = DisplayNameFallback
	}

	now := time.Now()
	record := &UserRecord{
		UID:           identity.ID,
		Email:         identity.Email,
		DisplayName:   name,
		Role:          RoleUser,
		Provider:      identity.ProviderTag(),
		EmailVerified: identity.EmailVerified,
		PhotoURL:      identity.PhotoURL,
		CreatedAt:     &now,
		LastLoginAt:   &now,
	}

	return record
}
