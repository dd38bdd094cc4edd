package model

import "time"

// Credential is the bearer credential proving the current session to the
// backend. At most one credential is live at a time; saving a new one
// replaces the previous one.
type Credential struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Empty reports whether no usable access token is present.
func (c Credential) Empty() bool {
	return c.AccessToken == ""
}
