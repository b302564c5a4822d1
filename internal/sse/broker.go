// Package sse implements a Server-Sent Events broker for live validation results.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/docmeta/internal/models"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types.
const (
	TypeDocumentValidated = "document.validated"
	TypeDocumentRemoved   = "document.removed"
	TypeReportUpdated     = "report.updated"
)

// ReportUpdate is the payload of report.updated: totals over the latest
// known result of every document.
type ReportUpdate struct {
	models.Summary
	// Failing counts documents with at least one error.
	Failing int `json:"failing"`
}

// docEvent carries either a fresh result or a removed path.
type docEvent struct {
	result  *models.Result
	removed string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set, the per-document tally
// and the report throttle; public methods talk to it over channels.
type Broker struct {
	reportMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	docEventCh    chan docEvent
	seedCh        chan []models.Result
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits report.updated at most once per throttle.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}

	b := &Broker{
		reportMin:     throttle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		docEventCh:    make(chan docEvent, 256),
		seedCh:        make(chan []models.Result),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

type counts struct{ errors, warnings int }

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	tally := make(map[string]counts)
	var lastReport time.Time
	var trailing <-chan time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload))
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
	}

	emitReport := func(now time.Time) {
		lastReport = now
		trailing = nil
		var u ReportUpdate
		for _, c := range tally {
			u.Documents++
			u.Errors += c.errors
			u.Warnings += c.warnings
			if c.errors > 0 {
				u.Failing++
			}
		}
		broadcast(Event{Type: TypeReportUpdated, Data: u})
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case results := <-b.seedCh:
			clear(tally)
			for _, r := range results {
				tally[r.Path] = counts{len(r.Errors), len(r.Warnings)}
			}

		case ev := <-b.docEventCh:
			if ev.result != nil {
				tally[ev.result.Path] = counts{len(ev.result.Errors), len(ev.result.Warnings)}
				broadcast(Event{Type: TypeDocumentValidated, Data: ev.result})
			} else {
				delete(tally, ev.removed)
				broadcast(Event{Type: TypeDocumentRemoved, Data: map[string]string{"path": ev.removed}})
			}

			now := time.Now()
			if wait := b.reportMin - now.Sub(lastReport); wait <= 0 {
				emitReport(now)
			} else if trailing == nil {
				// Emit once the window closes so the last totals are not lost.
				trailing = time.After(wait)
			}

		case now := <-trailing:
			emitReport(now)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// Seed replaces the per-document tally with results from a full scan
// without notifying clients.
func (b *Broker) Seed(results []models.Result) {
	if b.closed.Load() {
		return
	}
	select {
	case b.seedCh <- results:
	case <-b.stopped:
	}
}

// PublishResult publishes document.validated for res followed by a throttled
// report.updated.
func (b *Broker) PublishResult(res models.Result) {
	b.sendDocEvent(docEvent{result: &res})
}

// PublishRemoved publishes document.removed for path followed by a throttled
// report.updated.
func (b *Broker) PublishRemoved(path string) {
	b.sendDocEvent(docEvent{removed: path})
}

func (b *Broker) sendDocEvent(ev docEvent) {
	if b.closed.Load() {
		return
	}
	select {
	case b.docEventCh <- ev:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
