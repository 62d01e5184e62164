package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotLoggedIn = errors.New("not logged in")

type (
	Session struct {
		AccessToken  string    `json:"access_token"`
		RefreshToken string    `json:"refresh_token,omitempty"`
		IDToken      string    `json:"id_token"`
		Expiry       time.Time `json:"expiry"`
	}

	// Identity is what the ID token says about the user. It is read without
	// verifying the signature; the backend does the verifying.
	Identity struct {
		Subject       string   `json:"sub"`
		Email         string   `json:"email"`
		Name          string   `json:"name"`
		Groups        []string `json:"groups"`
		EmailVerified bool     `json:"email_verified"`
	}

	FileStore struct {
		path string
	}
)

// BearerToken is the credential backend calls carry. The gateway authorizer
// wants the ID token; the access token is a fallback for older sessions.
func (s *Session) BearerToken() (string, error) {
	if s == nil {
		return "", ErrNotLoggedIn
	}
	if s.IDToken != "" {
		return s.IDToken, nil
	}
	if s.AccessToken != "" {
		return s.AccessToken, nil
	}
	return "", ErrNotLoggedIn
}

func (s *Session) Expired(now time.Time) bool {
	return !s.Expiry.IsZero() && now.After(s.Expiry)
}

func (s *Session) Identity() (Identity, error) {
	if s == nil || s.IDToken == "" {
		return Identity{}, ErrNotLoggedIn
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.IDToken, claims); err != nil {
		return Identity{}, fmt.Errorf("can not decode ID token: %w", err)
	}

	id := Identity{}
	id.Subject, _ = claims["sub"].(string)
	id.Email, _ = claims["email"].(string)
	id.EmailVerified, _ = claims["email_verified"].(bool)
	for _, key := range []string{"name", "preferred_username", "username", "cognito:username"} {
		if name, ok := claims[key].(string); ok && name != "" {
			id.Name = name
			break
		}
	}
	id.Groups = []string{}
	if raw, ok := claims["cognito:groups"].([]any); ok {
		for _, g := range raw {
			if name, ok := g.(string); ok {
				id.Groups = append(id.Groups, name)
			}
		}
	}
	return id, nil
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath is ~/.config/gallery/session.json, or the platform
// equivalent.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("can not locate config dir: %w", err)
	}
	return filepath.Join(dir, "gallery", "session.json"), nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("can not read session %s: %w", f.path, err)
	}
	session := &Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", f.path, err)
	}
	return session, nil
}

// Save writes the session readable by the owner only.
func (f *FileStore) Save(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("can not create session dir: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("can not write session %s: %w", f.path, err)
	}
	return os.Chmod(f.path, 0o600)
}

// Clear removes the stored session. A missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("can not remove session %s: %w", f.path, err)
	}
	return nil
}
