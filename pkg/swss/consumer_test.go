package swss

import (
	"testing"
)

func TestConsumerOrderAndReplace(t *testing.T) {
	c := NewConsumer()
	c.AddEvent(KeyOpFieldsValues{Key: "Ethernet0:10.0.0.1/24", Op: SetCommand})
	c.AddEvent(KeyOpFieldsValues{Key: "Vlan100:192.168.1.1/24", Op: SetCommand})
	c.AddEvent(KeyOpFieldsValues{Key: "Ethernet0:10.0.0.1/24", Op: DelCommand})

	got := c.Snapshot()
	if len(got) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(got))
	}
	// Replacement keeps the original position.
	if got[0].Key != "Ethernet0:10.0.0.1/24" || got[0].Op != DelCommand {
		t.Errorf("got[0] = %+v, want replaced DEL in slot 0", got[0])
	}
	if got[1].Key != "Vlan100:192.168.1.1/24" {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestConsumerConsume(t *testing.T) {
	c := NewConsumer()
	c.AddEvent(KeyOpFieldsValues{Key: "a", Op: SetCommand})
	c.AddEvent(KeyOpFieldsValues{Key: "b", Op: SetCommand})

	c.Consume("a")
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if got := c.Snapshot(); len(got) != 1 || got[0].Key != "b" {
		t.Errorf("Snapshot = %+v", got)
	}

	// Consuming an absent key is a no-op.
	c.Consume("a")
	if c.Len() != 1 {
		t.Errorf("Len = %d after duplicate consume, want 1", c.Len())
	}
}

func TestConsumerReenqueueAfterConsume(t *testing.T) {
	c := NewConsumer()
	c.AddEvent(KeyOpFieldsValues{Key: "a", Op: SetCommand})
	c.Consume("a")
	c.AddEvent(KeyOpFieldsValues{Key: "a", Op: SetCommand, Fields: map[string]string{"scope": "global"}})

	got := c.Snapshot()
	if len(got) != 1 || got[0].Fields["scope"] != "global" {
		t.Fatalf("Snapshot = %+v", got)
	}
}
