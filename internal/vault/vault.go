// Package vault manages user accounts and session tokens for the dashboard:
// registration, login with bcrypt-checked passwords, JWT session issuance,
// and an account activity log.
package vault

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/plugin"
)

const defaultTokenTTL = 12 * time.Hour

// Topics the vault listens on to keep the activity log complete. They are
// owned by the sweep and report modules; the vault only knows their names.
const (
	topicSweepCompleted  = "sweep.completed"
	topicReportGenerated = "report.generated"
)

// systemUser labels activity rows that were not triggered by a session,
// such as sweeps started from the dashboard without logging in.
const systemUser = "system"

// Module is the vault module.
type Module struct {
	logger   *zap.Logger
	bus      plugin.EventBus
	users    *userStore
	activity *activityStore
	tokens   *tokenIssuer

	unsubs []func()
}

var (
	_ plugin.Module        = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
)

// New creates the vault module.
func New() *Module {
	return &Module{}
}

// Info implements plugin.Module.
func (m *Module) Info() plugin.ModuleInfo {
	return plugin.ModuleInfo{
		Name:        "vault",
		Version:     "0.1.0",
		Description: "User accounts, sessions, and activity log",
	}
}

// Init implements plugin.Module.
func (m *Module) Init(ctx context.Context, deps plugin.Deps) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	cfg := deps.Config

	if err := deps.Store.Migrate(ctx, "vault", migrations); err != nil {
		return err
	}
	m.users = newUserStore(deps.Store)
	m.activity = newActivityStore(deps.Store)

	secret := cfg.GetString("vault.jwt_secret")
	if secret == "" {
		// An ephemeral secret invalidates sessions across restarts; fine
		// for a single-host dashboard, but configurable for stable setups.
		generated, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = generated
		m.logger.Warn("vault.jwt_secret not set, sessions will not survive restarts")
	}

	ttl := cfg.GetDuration("vault.token_ttl")
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	m.tokens = newTokenIssuer(secret, ttl)

	m.logger.Info("vault module initialized", zap.Duration("token_ttl", ttl))
	return nil
}

// Start implements plugin.Module. It subscribes to sweep and report events
// so those actions land in the activity log alongside session events.
func (m *Module) Start(_ context.Context) error {
	if m.bus != nil {
		m.unsubs = append(m.unsubs,
			m.bus.Subscribe(topicSweepCompleted, func(ctx context.Context, _ plugin.Event) {
				m.recordEvent(ctx, systemUser, ActionScan)
			}),
			m.bus.Subscribe(topicReportGenerated, func(ctx context.Context, event plugin.Event) {
				username, _ := event.Payload.(string)
				if username == "" {
					username = systemUser
				}
				m.recordEvent(ctx, username, ActionReport)
			}),
		)
	}
	m.logger.Info("vault module started")
	return nil
}

// Stop implements plugin.Module.
func (m *Module) Stop(_ context.Context) error {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.logger.Info("vault module stopped")
	return nil
}

func (m *Module) recordEvent(ctx context.Context, username, action string) {
	if err := m.activity.Record(ctx, username, action, ""); err != nil {
		m.logger.Warn("activity record failed",
			zap.String("action", action), zap.Error(err))
	}
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	if m.users == nil || m.tokens == nil {
		return plugin.HealthStatus{Healthy: false, Detail: "not initialized"}
	}
	return plugin.HealthStatus{Healthy: true}
}

// Verify validates a session token. Other modules can use it to gate
// endpoints without importing the JWT machinery.
func (m *Module) Verify(token string) (*Claims, error) {
	return m.tokens.Verify(token)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
