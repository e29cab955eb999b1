// Package auth holds the signed-in user's identity session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotSignedIn is returned when no session is available.
var ErrNotSignedIn = errors.New("not signed in")

// Claims are the identity provider's access token claims.
type Claims struct {
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// UserMetadata is the profile data the identity provider attaches to a user.
type UserMetadata struct {
	FullName  string `json:"full_name"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// User is the signed-in user as described by the session token.
type User struct {
	ID        string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// DisplayName returns the name, falling back to the email address.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ParseUser decodes the user from an access token.
// The signature is not checked here; the backend verifies every request.
func ParseUser(accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	user := &User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.UserMetadata.FullName,
	}
	if user.Name == "" {
		user.Name = claims.UserMetadata.Name
	}
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
	}
	return user, nil
}
