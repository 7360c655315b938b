package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("presence reporter closed")

const reporterQueue = 16

// Reporter is the viewer side of the hub. Display queues a location event
// and never blocks; when the queue is full the event is dropped.
type Reporter struct {
	conn *websocket.Conn
	log  *zap.Logger

	out       chan Event
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	clients atomic.Int64
	dropped atomic.Int64
}

// Dial connects to the hub at url (ws:// or wss://).
func Dial(ctx context.Context, url string, log *zap.Logger) (*Reporter, error) {
	if log == nil {
		log = zap.NewNop()
	}

	header := http.Header{}
	header.Set("User-Agent", "heightview")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dialing presence hub %s: %w", url, err)
	}

	r := &Reporter{
		conn: conn,
		log:  log,
		out:  make(chan Event, reporterQueue),
		done: make(chan struct{}),
	}
	r.wg.Add(2)
	go r.writeLoop()
	go r.readLoop()
	return r, nil
}

// Display reports the viewed chunk location.
func (r *Reporter) Display(x, y float64) {
	if err := r.Send(Event{Type: EventLocation, Data: fmt.Sprintf("(%.2f, %.2f)", x, y)}); err != nil {
		r.log.Debug("location not reported", zap.Error(err))
	}
}

// Send queues an event.
func (r *Reporter) Send(ev Event) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	select {
	case r.out <- ev:
		return nil
	default:
		r.dropped.Add(1)
		return fmt.Errorf("presence queue full, dropped %s event", ev.Type)
	}
}

// Clients returns the latest client count announced by the hub.
func (r *Reporter) Clients() int {
	return int(r.clients.Load())
}

// Close flushes queued events, sends a close frame and waits for the
// connection goroutines to finish.
func (r *Reporter) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	r.wg.Wait()
	r.conn.Close()
	return nil
}

func (r *Reporter) writeLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-r.out:
			if err := r.write(ev); err != nil {
				r.log.Warn("presence send failed", zap.Error(err))
				r.shutdown()
				return
			}
		case <-ticker.C:
			r.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := r.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				r.shutdown()
				return
			}
		case <-r.done:
			// Flush what is already queued
			for {
				select {
				case ev := <-r.out:
					if r.write(ev) != nil {
						r.conn.Close()
						return
					}
				default:
					r.conn.SetWriteDeadline(time.Now().Add(writeWait))
					r.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					// The read loop ends when the hub echoes the close frame
					r.conn.SetReadDeadline(time.Now().Add(writeWait))
					return
				}
			}
		}
	}
}

func (r *Reporter) write(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	r.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return r.conn.WriteMessage(websocket.TextMessage, data)
}

func (r *Reporter) readLoop() {
	defer r.wg.Done()
	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			select {
			case <-r.done:
			default:
				r.log.Warn("presence hub connection lost", zap.Error(err))
			}
			r.shutdown()
			return
		}

		var ev Event
		if json.Unmarshal(data, &ev) != nil {
			continue
		}
		if ev.Type == EventClients {
			r.clients.Store(int64(ev.Count))
			r.log.Debug("presence clients", zap.Int("count", ev.Count))
		}
	}
}

// shutdown stops both loops after a connection failure.
func (r *Reporter) shutdown() {
	r.closeOnce.Do(func() { close(r.done) })
	r.conn.Close()
}
