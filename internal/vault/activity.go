package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/lanscope/lanscope/pkg/plugin"
)

// ActivityEntry is one row of the account activity log.
type ActivityEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	RemoteIP  string    `json:"remote_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Actions recorded in the activity log. Register, login and logout are
// recorded by the vault handlers; scan and report arrive over the event bus
// from their owning modules.
const (
	ActionRegister = "register"
	ActionLogin    = "login"
	ActionLogout   = "logout"
	ActionScan     = "scan"
	ActionReport   = "report"
)

// activityStore persists the account activity log.
type activityStore struct {
	store plugin.Store
}

func newActivityStore(store plugin.Store) *activityStore {
	return &activityStore{store: store}
}

// Record appends an entry to the log.
func (s *activityStore) Record(ctx context.Context, username, action, remoteIP string) error {
	_, err := s.store.DB().ExecContext(ctx,
		`INSERT INTO vault_activity (username, action, remote_ip, created_at) VALUES (?, ?, ?, ?)`,
		username, action, remoteIP, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *activityStore) List(ctx context.Context, limit int) ([]ActivityEntry, error) {
	rows, err := s.store.DB().QueryContext(ctx,
		`SELECT id, username, action, remote_ip, created_at
		 FROM vault_activity ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	entries := make([]ActivityEntry, 0, limit)
	for rows.Next() {
		var e ActivityEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.RemoteIP, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
