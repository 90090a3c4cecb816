package swss

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
)

// ConsumerStateTable drains records produced with ProducerStateTable.
type ConsumerStateTable struct {
	db      *DBConnector
	name    string
	keySet  string
	channel string
	pubsub  *redis.PubSub
}

// NewConsumerStateTable creates a consumer for the named table and
// subscribes to its notification channel.
func NewConsumerStateTable(ctx context.Context, db *DBConnector, name string) *ConsumerStateTable {
	return &ConsumerStateTable{
		db:      db,
		name:    name,
		keySet:  name + "_KEY_SET",
		channel: name + "_CHANNEL",
		pubsub:  db.client.Subscribe(ctx, name+"_CHANNEL"),
	}
}

// Notifications exposes the producer wakeup channel. Spurious wakeups are
// fine; Pops tolerates an empty key set.
func (c *ConsumerStateTable) Notifications() <-chan *redis.Message {
	return c.pubsub.Channel()
}

// Pops takes every pending key and resolves each into a
// KeyOpFieldsValues. Each key is popped in its own MULTI/EXEC
// transaction; the key set as a whole is not taken atomically. A staged
// key whose hash is gone is a DEL. Keys are returned in sorted order so
// replay is deterministic.
func (c *ConsumerStateTable) Pops(ctx context.Context) ([]KeyOpFieldsValues, error) {
	keys, err := c.db.client.SMembers(ctx, c.keySet).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.keySet, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	var events []KeyOpFieldsValues
	for _, key := range keys {
		staging := "_" + c.name + ":" + key
		pipe := c.db.client.TxPipeline()
		getCmd := pipe.HGetAll(ctx, staging)
		pipe.Del(ctx, staging)
		pipe.SRem(ctx, c.keySet, key)
		if _, err := pipe.Exec(ctx); err != nil {
			return events, fmt.Errorf("popping %s %s: %w", c.name, key, err)
		}

		fields := getCmd.Val()
		ev := KeyOpFieldsValues{Key: key, Fields: fields}
		if len(fields) == 0 {
			ev.Op = DelCommand
		} else {
			ev.Op = SetCommand
		}
		delete(fields, "NULL")
		events = append(events, ev)
	}
	return events, nil
}

// Close unsubscribes from the notification channel.
func (c *ConsumerStateTable) Close() error {
	return c.pubsub.Close()
}
