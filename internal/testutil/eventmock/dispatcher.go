package eventmock

import (
	"context"
	"sync"

	"ibb-guide/internal/domain/notification"
)

var _ notification.Dispatcher = (*Dispatcher)(nil)

// Dispatcher captures emitted events in order.
type Dispatcher struct {
	mu     sync.Mutex
	Events []notification.Event
}

func (d *Dispatcher) Emit(_ context.Context, e notification.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, e)
}

func (d *Dispatcher) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.Events))
	for _, e := range d.Events {
		out = append(out, e.Name)
	}
	return out
}
