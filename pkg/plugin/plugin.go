// Package plugin defines the contract between the LANScope core and its
// compile-time modules (sweep, perf, report, vault). Modules receive their
// dependencies through Deps at init and expose optional capabilities via the
// interfaces in optional.go.
package plugin

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ModuleInfo identifies a module to the registry and the /modules endpoint.
type ModuleInfo struct {
	Name        string
	Version     string
	Description string
}

// Module is the lifecycle interface every LANScope module implements.
type Module interface {
	// Info returns the module's identity.
	Info() ModuleInfo

	// Init wires the module's dependencies. Called once, before Start.
	Init(ctx context.Context, deps Deps) error

	// Start begins background operations. It must not block.
	Start(ctx context.Context) error

	// Stop gracefully shuts the module down.
	Stop(ctx context.Context) error
}

// Deps carries the shared infrastructure handed to each module at init.
type Deps struct {
	Config Config
	Logger *zap.Logger
	Store  Store
	Bus    EventBus
}

// Route represents an HTTP route exposed by a module. Routes are mounted
// under /api/v1/{module}{path}.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Config provides read access to module configuration.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	IsSet(key string) bool
	Sub(key string) Config
	Unmarshal(target any) error
}

// Migration is a single schema migration owned by a module.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Store provides shared SQLite access with per-module migrations.
type Store interface {
	// DB returns the underlying database handle for direct queries.
	DB() *sql.DB

	// Tx runs fn inside a transaction, committing on nil error.
	Tx(ctx context.Context, fn func(tx *sql.Tx) error) error

	// Migrate applies the module's pending migrations in version order.
	Migrate(ctx context.Context, moduleName string, migrations []Migration) error

	// Close closes the database.
	Close() error
}

// Event is a message published on the in-process bus.
type Event struct {
	Topic     string
	Source    string
	Timestamp time.Time
	Payload   any
}

// EventHandler processes a single event.
type EventHandler func(ctx context.Context, event Event)

// EventBus is the in-process publish/subscribe bus shared by modules.
type EventBus interface {
	// Publish delivers the event to all subscribers synchronously.
	Publish(ctx context.Context, event Event) error

	// PublishAsync delivers the event without blocking the caller.
	PublishAsync(ctx context.Context, event Event)

	// Subscribe registers a handler for a topic; the returned function
	// removes the subscription.
	Subscribe(topic string, handler EventHandler) func()

	// SubscribeAll registers a handler for every topic.
	SubscribeAll(handler EventHandler) func()
}

// HealthStatus reports a module's self-assessed health.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}
