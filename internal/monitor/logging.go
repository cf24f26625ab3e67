package monitor

import (
	"strings"

	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/logger"
)

// Ensure LoggingMonitor implements the interface.
var _ driven.ActivityMonitor = LoggingMonitor{}

// LoggingMonitor reports loader activity at info level.
type LoggingMonitor struct{}

// StartedLoading logs the attempt.
func (LoggingMonitor) StartedLoading(n *domain.ReferenceNode) {
	logger.Info("Loading %s (depth %d) from %s", n.Name, n.Depth, n.PrimaryLocation())
}

// CompletedLoading logs the outcome.
func (LoggingMonitor) CompletedLoading(n *domain.ReferenceNode) {
	status := n.Status()
	if reason := status.Reason(); reason != nil {
		logger.Info("%s: %s (%v)", n.Name, status.Kind(), reason)
		return
	}
	logger.Info("%s: %s", n.Name, status.Kind())
}

// Identified logs the discovered children.
func (LoggingMonitor) Identified(children []*domain.ReferenceNode, parent *domain.ReferenceNode) {
	if len(children) == 0 {
		return
	}
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name
	}
	logger.Info("%s references %s", parent.Name, strings.Join(names, ", "))
}
