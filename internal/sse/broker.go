// Package sse implements a Server-Sent Events broker announcing note changes.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Change kinds accepted by PublishChange.
const (
	KindSaved    = "saved"
	KindDeleted  = "deleted"
	KindImported = "imported"
	KindReloaded = "reloaded"
)

// RenderEvent tells pages to fetch fresh markup.
const RenderEvent = "notes.render"

// clientBuffer is how many frames a slow client may lag before frames are dropped.
const clientBuffer = 64

// heartbeat keeps idle connections open through proxies.
const heartbeat = 25 * time.Second

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// frame encodes event in the text/event-stream format.
func (e Event) frame() ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), nil
}

// changeEvent maps a change kind to its event, reporting false for unknown kinds.
func changeEvent(kind string, id int64) (Event, bool) {
	switch kind {
	case KindSaved:
		return Event{Type: "note.saved", Data: map[string]int64{"id": id}}, true
	case KindDeleted:
		return Event{Type: "note.deleted", Data: map[string]int64{"id": id}}, true
	case KindImported:
		return Event{Type: "notes.imported", Data: struct{}{}}, true
	case KindReloaded:
		return Event{Type: "notes.reloaded", Data: struct{}{}}, true
	}
	return Event{}, false
}

// hub is the broker state. Only the loop goroutine touches it.
type hub struct {
	clients map[chan []byte]struct{}

	throttle   time.Duration
	lastRender time.Time
	pending    bool
	timer      *time.Timer
}

func (h *hub) send(e Event) {
	raw, err := e.frame()
	if err != nil {
		return
	}
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
			// Slow client; drop rather than stall the loop.
		}
	}
}

// renderHint emits notes.render at most once per throttle window. A change
// that lands inside the window schedules one trailing emit at its end, so the
// last change is always followed by a render hint.
func (h *hub) renderHint(now time.Time) {
	wait := h.throttle - now.Sub(h.lastRender)
	if wait <= 0 {
		h.flushRender(now)
		return
	}
	if !h.pending {
		h.pending = true
		h.timer.Reset(wait)
	}
}

func (h *hub) flushRender(now time.Time) {
	h.pending = false
	h.lastRender = now
	h.send(Event{Type: RenderEvent, Data: struct{}{}})
}

// Broker fans events out to connected page sessions. Every operation is a
// closure run on the broker's loop goroutine.
type Broker struct {
	ops      chan func(*hub)
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewBroker creates a broker that emits notes.render at most once per
// renderThrottle, with a trailing emit for changes inside a window.
func NewBroker(renderThrottle time.Duration) *Broker {
	if renderThrottle <= 0 {
		renderThrottle = time.Second
	}
	b := &Broker{
		ops:  make(chan func(*hub)),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	timer := time.NewTimer(renderThrottle)
	timer.Stop()
	go b.loop(&hub{
		clients:  make(map[chan []byte]struct{}),
		throttle: renderThrottle,
		timer:    timer,
	})
	return b
}

func (b *Broker) loop(h *hub) {
	defer close(b.done)
	for {
		select {
		case <-b.stop:
			h.timer.Stop()
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		case now := <-h.timer.C:
			if h.pending {
				h.flushRender(now)
			}
		}
	}
}

// do runs op on the loop. It reports false once the broker is closed.
func (b *Broker) do(op func(*hub)) bool {
	select {
	case <-b.stop:
		return false
	default:
	}
	select {
	case b.ops <- op:
		return true
	case <-b.stop:
		return false
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
}

// Subscribe adds a client and returns its channel. The channel is closed on
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.do(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := make(chan int, 1)
	if !b.do(func(h *hub) { n <- len(h.clients) }) {
		return 0
	}
	return <-n
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.do(func(h *hub) { h.send(event) })
}

// PublishChange announces a collection change followed by a throttled
// notes.render hint. id is ignored for imported and reloaded; unknown kinds
// are dropped.
func (b *Broker) PublishChange(kind string, id int64) {
	event, ok := changeEvent(kind, id)
	if !ok {
		return
	}
	b.do(func(h *hub) {
		h.send(event)
		h.renderHint(time.Now())
	})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames := b.Subscribe()
	defer b.Unsubscribe(frames)

	ping := time.NewTicker(heartbeat)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
		case frame, open := <-frames:
			if !open {
				return
			}
			_, _ = w.Write(frame)
		}
		flusher.Flush()
	}
}
