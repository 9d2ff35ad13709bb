package sweep

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/plugin"
)

// wsMessage is the frame sent to websocket watchers for each sweep event.
type wsMessage struct {
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// handleWS streams sweep progress events over a websocket. The client sees
// sweep.started, one sweep.device_found per device, then sweep.completed.
func (m *Module) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		m.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	ctx := r.Context()
	events := make(chan plugin.Event, 64)

	forward := func(_ context.Context, ev plugin.Event) {
		select {
		case events <- ev:
		default:
			// Slow client; drop rather than stall the bus.
		}
	}

	unsubs := []func(){
		m.bus.Subscribe(TopicSweepStarted, forward),
		m.bus.Subscribe(TopicDeviceFound, forward),
		m.bus.Subscribe(TopicSweepCompleted, forward),
	}
	defer func() {
		for _, u := range unsubs {
			u()
		}
	}()

	// Drain reads so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev := <-events:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, wsMessage{
				Topic:     ev.Topic,
				Timestamp: ev.Timestamp,
				Payload:   ev.Payload,
			})
			cancel()
			if err != nil {
				m.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
