// Package feed streams entity-change events to websocket clients so the
// admin console can refresh lists without polling.
package feed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/draughtworks/brewdeck/internal/event"
)

// subscriber buffer size. A client that falls this far behind is dropped
// rather than blocking the bus.
const sendBuffer = 32

// Feed bridges the in-process event bus onto /api/v1/feed websockets.
type Feed struct {
	bus    event.EventBus
	logger *zap.Logger
}

// New creates a Feed over the given bus.
func New(bus event.EventBus, logger *zap.Logger) *Feed {
	return &Feed{bus: bus, logger: logger}
}

// RegisterRoutes mounts the feed endpoint on the mux.
func (f *Feed) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/feed", f.handleFeed)
}

// handleFeed upgrades the connection and forwards every bus event as a JSON
// frame until the client disconnects or falls behind.
func (f *Feed) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The console connects from a terminal, not a browser page.
		InsecureSkipVerify: true,
	})
	if err != nil {
		f.logger.Warn("feed accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "feed closed")

	ctx := r.Context()
	events := make(chan event.Event, sendBuffer)
	dropped := make(chan struct{})
	var dropOnce sync.Once

	unsubscribe := f.bus.SubscribeAll(func(_ context.Context, ev event.Event) {
		select {
		case events <- ev:
		default:
			dropOnce.Do(func() { close(dropped) })
		}
	})
	defer unsubscribe()

	// Reads are discarded; the read loop only notices client disconnects
	// and answers pings.
	readCtx := conn.CloseRead(ctx)

	for {
		select {
		case <-readCtx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-dropped:
			f.logger.Warn("feed client too slow, dropping connection")
			conn.Close(websocket.StatusPolicyViolation, "client too slow")
			return
		case ev := <-events:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
