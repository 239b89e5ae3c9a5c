// File: internal/session/model.go
package session

import (
	"time"

	"github.com/google/uuid"

	"rent_a_ride_backend/internal/common"
)

// Session is one refresh-token lineage for a user. The raw refresh token is
// never stored; only the SHA-256 hex digest of the latest token in the
// lineage is kept. Rotation overwrites the digest, so an old token that
// resurfaces no longer matches and is treated as replay.
type Session struct {
	common.BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`
	RefreshTokenHash string    `gorm:"type:char(64);not null;uniqueIndex"`
	Rotations        int       `gorm:"not null;default:0"`
	UserAgent        string    `gorm:"type:text"`
	IPAddress        string    `gorm:"type:varchar(64)"`
	ExpiresAt        time.Time `gorm:"not null;index"`
	RevokedAt        *time.Time
}

// TableName specifies the table name for the Session model.
func (Session) TableName() string {
	return "sessions"
}

// IsActive reports whether the session can still mint tokens at the given time.
func (s *Session) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// ClientInfo carries request metadata recorded on the session row.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}
