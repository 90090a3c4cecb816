package swss

// Consumer is the in-memory pending map an orchestration agent drains.
// Events arrive from a ConsumerStateTable (or a test) via AddEvent and
// stay pending until consumed; an agent defers an event simply by not
// consuming it. A later event for a key already pending replaces the
// earlier one in place, keeping its position in arrival order.
type Consumer struct {
	order   []string
	pending map[string]KeyOpFieldsValues
}

// NewConsumer creates an empty pending map.
func NewConsumer() *Consumer {
	return &Consumer{pending: make(map[string]KeyOpFieldsValues)}
}

// AddEvent enqueues or replaces the pending event for ev.Key.
func (c *Consumer) AddEvent(ev KeyOpFieldsValues) {
	if _, ok := c.pending[ev.Key]; !ok {
		c.order = append(c.order, ev.Key)
	}
	c.pending[ev.Key] = ev
}

// Snapshot returns the pending events in arrival order. The slice is a
// copy; consuming during iteration is safe.
func (c *Consumer) Snapshot() []KeyOpFieldsValues {
	events := make([]KeyOpFieldsValues, 0, len(c.pending))
	for _, key := range c.order {
		if ev, ok := c.pending[key]; ok {
			events = append(events, ev)
		}
	}
	return events
}

// Consume erases the pending event for key.
func (c *Consumer) Consume(key string) {
	if _, ok := c.pending[key]; !ok {
		return
	}
	delete(c.pending, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of pending events.
func (c *Consumer) Len() int {
	return len(c.pending)
}
