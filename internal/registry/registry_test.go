package registry

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/plugin"
)

// testModule is a minimal module for registry tests.
type testModule struct {
	info     plugin.ModuleInfo
	initErr  error
	startErr error
	stopped  bool
}

func newTestModule(name string) *testModule {
	return &testModule{
		info: plugin.ModuleInfo{
			Name:        name,
			Version:     "1.0.0",
			Description: "test module " + name,
		},
	}
}

func (m *testModule) Info() plugin.ModuleInfo                      { return m.info }
func (m *testModule) Init(_ context.Context, _ plugin.Deps) error  { return m.initErr }
func (m *testModule) Start(_ context.Context) error                { return m.startErr }
func (m *testModule) Stop(_ context.Context) error                 { m.stopped = true; return nil }

// testHTTPModule implements both Module and HTTPProvider.
type testHTTPModule struct {
	testModule
	routes []plugin.Route
}

func (m *testHTTPModule) Routes() []plugin.Route { return m.routes }

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func testDeps() func(string) plugin.Deps {
	return func(name string) plugin.Deps {
		return plugin.Deps{Logger: testLogger().Named(name)}
	}
}

func TestRegister(t *testing.T) {
	reg := New(testLogger())

	m := newTestModule("sweep")
	if err := reg.Register(m); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Duplicate registration should fail.
	if err := reg.Register(m); err == nil {
		t.Fatal("Register() expected error for duplicate, got nil")
	}
}

func TestRegisterEmptyName(t *testing.T) {
	reg := New(testLogger())
	m := &testModule{info: plugin.ModuleInfo{Name: ""}}
	if err := reg.Register(m); err == nil {
		t.Fatal("Register() expected error for empty name, got nil")
	}
}

func TestAllPreservesOrder(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestModule("sweep"))
	reg.Register(newTestModule("perf"))
	reg.Register(newTestModule("report"))

	all := reg.All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d modules, want 3", len(all))
	}
	for i, want := range []string{"sweep", "perf", "report"} {
		if got := all[i].Info().Name; got != want {
			t.Errorf("All()[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestInitAll(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestModule("sweep"))
	reg.Register(newTestModule("perf"))

	if err := reg.InitAll(context.Background(), testDeps()); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
}

func TestInitAllFails(t *testing.T) {
	reg := New(testLogger())
	m := newTestModule("sweep")
	m.initErr = errors.New("init failed")
	reg.Register(m)

	if err := reg.InitAll(context.Background(), testDeps()); err == nil {
		t.Fatal("InitAll() expected error, got nil")
	}
}

func TestStartAllStopAll(t *testing.T) {
	reg := New(testLogger())
	a := newTestModule("sweep")
	b := newTestModule("perf")
	reg.Register(a)
	reg.Register(b)

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())

	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}

	reg.StopAll(ctx)
	if !a.stopped || !b.stopped {
		t.Error("StopAll() did not stop all started modules")
	}
}

func TestStartAllUnwindsOnFailure(t *testing.T) {
	reg := New(testLogger())
	a := newTestModule("sweep")
	b := newTestModule("perf")
	b.startErr = errors.New("start failed")
	reg.Register(a)
	reg.Register(b)

	ctx := context.Background()
	reg.InitAll(ctx, testDeps())

	if err := reg.StartAll(ctx); err == nil {
		t.Fatal("StartAll() expected error, got nil")
	}
	if !a.stopped {
		t.Error("expected already-started module to be stopped after failure")
	}
}

func TestGet(t *testing.T) {
	reg := New(testLogger())
	reg.Register(newTestModule("sweep"))

	if _, ok := reg.Get("sweep"); !ok {
		t.Error("Get('sweep') returned false, want true")
	}
	if _, ok := reg.Get("nonexistent"); ok {
		t.Error("Get('nonexistent') returned true, want false")
	}
}

func TestAllRoutesHTTPProvider(t *testing.T) {
	reg := New(testLogger())

	hm := &testHTTPModule{
		testModule: *newTestModule("report"),
		routes: []plugin.Route{
			{Method: "GET", Path: "/analysis"},
		},
	}
	reg.Register(hm)
	reg.Register(newTestModule("noroutes"))

	routes := reg.AllRoutes()
	if len(routes) != 1 {
		t.Fatalf("AllRoutes() returned %d module route sets, want 1", len(routes))
	}
	if _, ok := routes["report"]; !ok {
		t.Error("AllRoutes() missing 'report' routes")
	}
}
