// Package stream broadcasts newly decoded flight samples to live
// consumers: browser dashboards over a websocket, and optionally a
// NATS subject for fleet-wide fan-out.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"

	"jpiedm/edm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SampleBroadcaster fans a flight's samples out to every currently
// connected websocket client as they're decoded, the live-replay
// surface the decoder's pure, batch-oriented API leaves to the host.
type SampleBroadcaster struct {
	log *logrus.Entry

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewSampleBroadcaster(log *logrus.Entry) *SampleBroadcaster {
	return &SampleBroadcaster{
		log:     log,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection as a broadcast target until it disconnects.
func (b *SampleBroadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	b.mu.Lock()
	b.clients[conn] = struct{}{}
	b.mu.Unlock()

	// Drain (and discard) client reads so ping/pong and close frames
	// are processed; this connection is publish-only.
	go func() {
		defer b.disconnect(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *SampleBroadcaster) disconnect(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.clients, conn)
	b.mu.Unlock()
	conn.Close()
}

// sampleMessage is the wire shape sent to dashboard clients.
type sampleMessage struct {
	FlightNumber uint16      `json:"flight_number"`
	Sample       edm.Sample  `json:"sample"`
}

// Publish sends one sample to every connected client. The sample is
// deep-copied first so a client's JSON marshaling can never observe
// (or race with) a caller that later mutates its own copy.
func (b *SampleBroadcaster) Publish(flightNumber uint16, sample edm.Sample) {
	isolated := deepcopy.Copy(sample).(edm.Sample)
	msg := sampleMessage{FlightNumber: flightNumber, Sample: isolated}
	payload, err := json.Marshal(msg)
	if err != nil {
		b.log.WithError(err).Error("marshal sample for broadcast")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.log.WithError(err).Debug("dropping unresponsive websocket client")
			go b.disconnect(conn)
		}
	}
}

func (b *SampleBroadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
