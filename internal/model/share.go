package model

import appErr "github.com/xxxsen/docshare/internal/pkg/errors"

type AccessLevel string

const (
	AccessLevelView     AccessLevel = "view"
	AccessLevelDownload AccessLevel = "download"
)

func (l AccessLevel) Valid() bool {
	return l == AccessLevelView || l == AccessLevelDownload
}

// Allows reports whether a link issued at level l permits op. download implies view.
func (l AccessLevel) Allows(op AccessLevel) bool {
	if op == AccessLevelView {
		return l.Valid()
	}
	return l == AccessLevelDownload
}

const (
	ShareStateActive  = 1
	ShareStateRevoked = 2
)

// ShareLink grants bounded access to one document through an opaque token.
// Everything except ViewCount (and State, on revocation) is fixed at creation.
type ShareLink struct {
	ID                 string      `json:"id"`
	Token              string      `json:"token"`
	DocumentID         string      `json:"document_id"`
	OwnerID            string      `json:"owner_id"`
	AccessLevel        AccessLevel `json:"access_level"`
	State              int         `json:"state"`
	MaxViews           *int        `json:"max_views,omitempty"`
	ViewCount          int         `json:"view_count"`
	PasswordHash       string      `json:"-"`
	RecipientEmailHint string      `json:"recipient_email_hint,omitempty"`
	CreatedAt          int64       `json:"created_at"`
	ExpiresAt          int64       `json:"expires_at"`
}

func (s *ShareLink) RequiresPassword() bool {
	return s.PasswordHash != ""
}

func (s *ShareLink) IsRevoked() bool {
	return s.State == ShareStateRevoked
}

func (s *ShareLink) IsExpired(now int64) bool {
	return now > s.ExpiresAt
}

func (s *ShareLink) IsExhausted() bool {
	return s.MaxViews != nil && s.ViewCount >= *s.MaxViews
}

// Check returns the terminal condition that denies any access at now, or nil.
// Revocation wins over expiry, expiry over exhaustion.
func (s *ShareLink) Check(now int64) error {
	switch {
	case s.IsRevoked():
		return appErr.ErrShareRevoked
	case s.IsExpired(now):
		return appErr.ErrShareExpired
	case s.IsExhausted():
		return appErr.ErrShareExhausted
	}
	return nil
}
