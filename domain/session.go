package domain

import "time"

// Session pairs the bearer credential with the identity it proves. The two are
// always set and cleared together.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// NewSession returns nil unless both halves are present.
func NewSession(token string, user *User) *Session {
	if token == "" || user == nil {
		return nil
	}
	return &Session{Token: token, User: *user}
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	return s.User.IsExpired(reference)
}

// PartitionKey returns the cart partition for the session, guest when nil.
func (s *Session) PartitionKey() string {
	if s == nil {
		return GuestPartition
	}
	return s.User.PartitionKey()
}
