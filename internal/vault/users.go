package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lanscope/lanscope/pkg/plugin"
)

var (
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("username already exists")

	// ErrInvalidCredentials covers both unknown users and wrong passwords,
	// so responses do not reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is a vault account. The password hash never leaves the package.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	passwordHash string
	CreatedAt    time.Time `json:"created_at"`
}

// migrations is the vault module's schema.
var migrations = []plugin.Migration{
	{
		Version:     1,
		Description: "create vault_users table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS vault_users (
					id            INTEGER PRIMARY KEY AUTOINCREMENT,
					username      TEXT NOT NULL UNIQUE,
					name          TEXT NOT NULL DEFAULT '',
					password_hash TEXT NOT NULL,
					created_at    TIMESTAMP NOT NULL
				)
			`)
			return err
		},
	},
	{
		Version:     2,
		Description: "create vault_activity table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS vault_activity (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					username   TEXT NOT NULL,
					action     TEXT NOT NULL,
					remote_ip  TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMP NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_vault_activity_created_at
					ON vault_activity(created_at DESC);
			`)
			return err
		},
	},
}

// userStore persists vault accounts.
type userStore struct {
	store plugin.Store
}

func newUserStore(store plugin.Store) *userStore {
	return &userStore{store: store}
}

// Create registers a new user with a bcrypt-hashed password.
func (s *userStore) Create(ctx context.Context, username, name, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.store.DB().ExecContext(ctx,
		`INSERT INTO vault_users (username, name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username, name, string(hash), now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}

	return &User{
		ID:           id,
		Username:     username,
		Name:         name,
		passwordHash: string(hash),
		CreatedAt:    now,
	}, nil
}

// Authenticate verifies a username/password pair.
func (s *userStore) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.byUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn comparable time so lookups do not reveal user existence.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
				[]byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userStore) byUsername(ctx context.Context, username string) (*User, error) {
	row := s.store.DB().QueryRowContext(ctx,
		`SELECT id, username, name, password_hash, created_at FROM vault_users WHERE username = ?`,
		username)

	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.Name, &user.passwordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation detects SQLite unique constraint errors without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
