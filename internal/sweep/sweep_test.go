package sweep

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lanscope/lanscope/internal/probe"
	"github.com/lanscope/lanscope/pkg/models"
	"github.com/lanscope/lanscope/pkg/plugin"
)

// fakeEnv is a canned network environment.
type fakeEnv struct {
	localIP   net.IP
	localMAC  string
	gateway   net.IP
	neighbors map[string]string
}

func (e *fakeEnv) LocalIP() net.IP  { return e.localIP }
func (e *fakeEnv) LocalMAC() string { return e.localMAC }

func (e *fakeEnv) DefaultGateway(context.Context) (net.IP, error) {
	return e.gateway, nil
}

func (e *fakeEnv) Interfaces() []models.NetworkInterface { return nil }

func (e *fakeEnv) IOCounters() (uint64, uint64, error) { return 0, 0, nil }

func (e *fakeEnv) Neighbors(context.Context) (map[string]string, error) {
	return e.neighbors, nil
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []plugin.Event
}

func (b *recordingBus) Publish(_ context.Context, ev plugin.Event) error {
	b.record(ev)
	return nil
}

func (b *recordingBus) PublishAsync(_ context.Context, ev plugin.Event) { b.record(ev) }

func (b *recordingBus) Subscribe(string, plugin.EventHandler) func() { return func() {} }

func (b *recordingBus) SubscribeAll(plugin.EventHandler) func() { return func() {} }

func (b *recordingBus) record(ev plugin.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBus) topics() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	counts := make(map[string]int)
	for _, ev := range b.events {
		counts[ev.Topic]++
	}
	return counts
}

// reachableSet makes a prober that answers only for the given addresses.
func reachableSet(addrs ...string) probeFunc {
	set := make(map[string]bool, len(addrs))
	for _, a := range addrs {
		set[a] = true
	}
	return func(_ context.Context, addr string) (probe.Result, error) {
		if set[addr] {
			return probe.Result{Reachable: true, RTT: 5 * time.Millisecond}, nil
		}
		return probe.Result{}, nil
	}
}

func newTestSweeper(t *testing.T, env *fakeEnv, prober probe.Prober, bus plugin.EventBus) *Sweeper {
	t.Helper()
	logger := zap.NewNop()
	enricher := NewEnricher(prober, nil, nil, logger)
	return NewSweeper(env, prober, enricher, bus, nil, SweeperOptions{
		Deadline: 10 * time.Second,
	}, logger)
}

func testEnv() *fakeEnv {
	return &fakeEnv{
		localIP:  net.ParseIP("192.168.1.50"),
		localMAC: "11:22:33:44:55:66",
		gateway:  net.ParseIP("192.168.1.1"),
		neighbors: map[string]string{
			"192.168.1.1":  "AA:AA:AA:AA:AA:01",
			"192.168.1.20": "AA:AA:AA:AA:AA:14",
		},
	}
}

func TestSweepFindsAndSortsDevices(t *testing.T) {
	env := testEnv()
	prober := reachableSet("192.168.1.20", "192.168.1.1", "192.168.1.105")
	bus := &recordingBus{}

	s := newTestSweeper(t, env, prober, bus)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "192.168.1", result.Prefix)
	assert.False(t, result.Fallback)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Devices, 3)

	// Sorted by last octet.
	assert.Equal(t, []int{1, 20, 105}, []int{
		result.Devices[0].ID,
		result.Devices[1].ID,
		result.Devices[2].ID,
	})

	// Gateway octet classifies as router regardless of hostname.
	assert.Equal(t, models.DeviceTypeRouter, result.Devices[0].Type)
	assert.Equal(t, "AA:AA:AA:AA:AA:01", result.Devices[0].MAC)
	assert.Equal(t, "AA:AA:AA:AA:AA:14", result.Devices[1].MAC)
	assert.Equal(t, models.MACUnknown, result.Devices[2].MAC)

	assert.NotEmpty(t, result.ID)
	assert.GreaterOrEqual(t, result.DurationMs, float64(0))
}

func TestSweepPublishesEvents(t *testing.T) {
	env := testEnv()
	bus := &recordingBus{}

	s := newTestSweeper(t, env, reachableSet("192.168.1.20", "192.168.1.105"), bus)
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	topics := bus.topics()
	assert.Equal(t, 1, topics[TopicSweepStarted])
	assert.Equal(t, 2, topics[TopicDeviceFound])
	assert.Equal(t, 1, topics[TopicSweepCompleted])
}

func TestSweepFallbackWhenNothingResponds(t *testing.T) {
	env := testEnv()
	bus := &recordingBus{}

	s := newTestSweeper(t, env, reachableSet(), bus)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	require.Len(t, result.Devices, 2)

	gw := result.Devices[0]
	assert.Equal(t, 1, gw.ID)
	assert.Equal(t, "192.168.1.1", gw.IP)
	assert.Equal(t, models.DeviceTypeRouter, gw.Type)
	assert.Equal(t, 100, gw.Signal)

	self := result.Devices[1]
	assert.Equal(t, 2, self.ID)
	assert.Equal(t, "192.168.1.50", self.IP)
	assert.Equal(t, "11:22:33:44:55:66", self.MAC)
	assert.Equal(t, models.DeviceTypeDesktop, self.Type)
	assert.Equal(t, 100, self.Signal)
}

func TestSweepLastResult(t *testing.T) {
	env := testEnv()
	s := newTestSweeper(t, env, reachableSet("192.168.1.20"), nil)

	assert.Nil(t, s.Last())

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, result, s.Last())
}

func TestSweepRejectsConcurrentRuns(t *testing.T) {
	env := testEnv()
	s := newTestSweeper(t, env, reachableSet(), nil)

	s.running.Store(true)
	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
	s.running.Store(false)
}

func TestSweepRejectsNonIPv4Host(t *testing.T) {
	env := testEnv()
	env.localIP = net.ParseIP("::1")

	s := newTestSweeper(t, env, reachableSet(), nil)
	_, err := s.Run(context.Background())
	assert.Error(t, err)
}
