package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/storefront/domain"
)

const maxPlainMessage = 300

// TokenResponse is returned by the login and registration endpoints. Optional fields
// are pointers so absence can be told apart from zero values.
type TokenResponse struct {
	UserID    int64             `json:"userId"`
	ID        int64             `json:"id,omitempty"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	IsAdmin   *bool             `json:"isAdmin,omitempty"`
	Token     string            `json:"token"`
	ExpiresAt *domain.Timestamp `json:"expiresAt,omitempty"`
}

// IdentityOptions selects the default-substitution rules applied at the boundary.
type IdentityOptions struct {
	// ForceAdmin ignores the server's isAdmin and sets it to true.
	ForceAdmin bool
	// FallbackTTL is used when neither expiresAt nor a JWT exp claim is available.
	FallbackTTL time.Duration
	Now         time.Time
}

// Identity converts the response into a User.
//
// isAdmin defaults to false unless ForceAdmin is set. expiresAt falls back to the
// token's exp claim when the token is a JWT, then to Now+FallbackTTL when that is set,
// and finally stays zero (no expiry).
func (r *TokenResponse) Identity(opts IdentityOptions) *domain.User {
	if r == nil {
		return nil
	}
	id := r.UserID
	if id == 0 {
		id = r.ID
	}
	user := &domain.User{
		ID:    id,
		Name:  r.Name,
		Email: r.Email,
	}
	switch {
	case opts.ForceAdmin:
		user.IsAdmin = true
	case r.IsAdmin != nil:
		user.IsAdmin = *r.IsAdmin
	}

	switch {
	case r.ExpiresAt != nil && !r.ExpiresAt.IsZero():
		user.ExpiresAt = r.ExpiresAt.Time
	default:
		if exp, ok := TokenExpiry(r.Token); ok {
			user.ExpiresAt = exp
		} else if opts.FallbackTTL > 0 {
			now := opts.Now
			if now.IsZero() {
				now = time.Now()
			}
			user.ExpiresAt = now.Add(opts.FallbackTTL)
		}
	}
	return user
}

// TokenExpiry reads the exp claim of a JWT without verifying it. Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), true
	case json.Number:
		if v, err := exp.Int64(); err == nil {
			return time.Unix(v, 0), true
		}
	}
	return time.Time{}, false
}

// errorBody covers the JSON error shapes the remote API produces.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

// ExtractMessage pulls a human-readable message out of an error response body:
// {"message": ...}, {"error": ...}, a JSON string, or short plain text, in that order,
// falling back to the status text.
func ExtractMessage(body []byte, status int) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '{':
			var eb errorBody
			if err := json.Unmarshal(trimmed, &eb); err == nil {
				for _, candidate := range []string{eb.Message, eb.Error, eb.Detail} {
					if candidate = strings.TrimSpace(candidate); candidate != "" {
						return candidate
					}
				}
			}
		case '"':
			var s string
			if err := json.Unmarshal(trimmed, &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		case '<', '[':
			// markup and arrays carry nothing displayable
		default:
			if utf8.Valid(trimmed) {
				text := []rune(string(trimmed))
				if len(text) > maxPlainMessage {
					return string(text[:maxPlainMessage]) + "..."
				}
				return string(text)
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}
