package stream

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"jpiedm/edm"
)

// NATSPublisher republishes decoded samples onto a NATS subject for
// consumers outside this process, mirroring SampleBroadcaster's
// websocket fan-out but for a message-bus audience.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// DialNATS connects to a NATS server and returns a publisher bound to
// subject.
func DialNATS(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{nc: nc, subject: subject}, nil
}

func (p *NATSPublisher) Close() { p.nc.Close() }

// Publish encodes one sample as JSON and publishes it to the bound
// subject, suffixed with the flight number so subscribers can filter
// per-flight with a wildcard (e.g. "jpiedm.samples.1197").
func (p *NATSPublisher) Publish(flightNumber uint16, sample edm.Sample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	subject := fmt.Sprintf("%s.%d", p.subject, flightNumber)
	return p.nc.Publish(subject, payload)
}
