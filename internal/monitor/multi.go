package monitor

import (
	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
)

type multi []driven.ActivityMonitor

// Multi returns a monitor forwarding every event to each non-nil monitor in order.
// It returns nil when no monitor remains.
func Multi(monitors ...driven.ActivityMonitor) driven.ActivityMonitor {
	var m multi
	for _, mon := range monitors {
		if mon != nil {
			m = append(m, mon)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

func (m multi) StartedLoading(n *domain.ReferenceNode) {
	for _, mon := range m {
		mon.StartedLoading(n)
	}
}

func (m multi) CompletedLoading(n *domain.ReferenceNode) {
	for _, mon := range m {
		mon.CompletedLoading(n)
	}
}

func (m multi) Identified(children []*domain.ReferenceNode, parent *domain.ReferenceNode) {
	for _, mon := range m {
		mon.Identified(children, parent)
	}
}
