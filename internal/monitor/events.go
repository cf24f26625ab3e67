package monitor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/logger"
)

// Ensure EventMonitor implements the interface.
var _ driven.ActivityMonitor = (*EventMonitor)(nil)

// DefaultSubjectPrefix prefixes event subjects when none is configured.
const DefaultSubjectPrefix = "stepref"

// Publisher sends a message to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event is the JSON payload of a published monitor event.
type Event struct {
	Kind     string    `json:"kind"`
	Node     string    `json:"node"`
	Depth    int       `json:"depth"`
	Location string    `json:"location,omitempty"`
	Status   string    `json:"status,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Children []string  `json:"children,omitempty"`
	Time     time.Time `json:"time"`
}

// Event kinds, also used as the last subject token.
const (
	EventStarted    = "started"
	EventCompleted  = "completed"
	EventIdentified = "identified"
)

// EventMonitor publishes loader activity as JSON messages on
// <prefix>.<kind> subjects. Publish failures are logged and dropped.
type EventMonitor struct {
	pub    Publisher
	prefix string
	now    func() time.Time
}

// NewEventMonitor creates a monitor publishing through pub.
func NewEventMonitor(pub Publisher, prefix string) *EventMonitor {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &EventMonitor{pub: pub, prefix: prefix, now: time.Now}
}

// ConnectEventMonitor dials a NATS server and returns a monitor publishing to it.
// The returned close function drains the connection.
func ConnectEventMonitor(url, prefix string) (*EventMonitor, func(), error) {
	conn, err := nats.Connect(url, nats.Name("stepref"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	closeFn := func() {
		if err := conn.Drain(); err != nil {
			logger.Debug("Failed to drain NATS connection: %v", err)
		}
	}
	return NewEventMonitor(conn, prefix), closeFn, nil
}

// StartedLoading publishes a started event.
func (m *EventMonitor) StartedLoading(n *domain.ReferenceNode) {
	e := m.event(EventStarted, n)
	e.Location = n.PrimaryLocation().String()
	m.publish(e)
}

// CompletedLoading publishes the outcome of the attempt.
func (m *EventMonitor) CompletedLoading(n *domain.ReferenceNode) {
	e := m.event(EventCompleted, n)
	e.Location = n.PrimaryLocation().String()
	e.Status = n.Status().Kind().String()
	if reason := n.Status().Reason(); reason != nil {
		e.Reason = reason.Error()
	}
	m.publish(e)
}

// Identified publishes the children discovered in parent.
func (m *EventMonitor) Identified(children []*domain.ReferenceNode, parent *domain.ReferenceNode) {
	e := m.event(EventIdentified, parent)
	e.Children = make([]string, len(children))
	for i, c := range children {
		e.Children[i] = c.Name
	}
	m.publish(e)
}

func (m *EventMonitor) event(kind string, n *domain.ReferenceNode) Event {
	return Event{Kind: kind, Node: n.Name, Depth: n.Depth, Time: m.now().UTC()}
}

func (m *EventMonitor) publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logger.Warn("Failed to encode %s event: %v", e.Kind, err)
		return
	}
	subject := m.prefix + "." + e.Kind
	if err := m.pub.Publish(subject, data); err != nil {
		logger.Warn("Failed to publish %s: %v", subject, err)
	}
}
