package swss

import (
	"context"
	"fmt"
)

// ProducerStateTable publishes records into an APPL_DB table using the
// swss state-table protocol: the record is staged under "_<table>:<key>",
// the key is added to "<table>_KEY_SET", and a notification is published
// on "<table>_CHANNEL". Consumers pop each staged key atomically; a
// staged key with no hash is a delete.
type ProducerStateTable struct {
	db      *DBConnector
	name    string
	keySet  string
	channel string
}

// NewProducerStateTable creates a producer for the named table.
func NewProducerStateTable(db *DBConnector, name string) *ProducerStateTable {
	return &ProducerStateTable{
		db:      db,
		name:    name,
		keySet:  name + "_KEY_SET",
		channel: name + "_CHANNEL",
	}
}

func (p *ProducerStateTable) stagingKey(key string) string {
	return "_" + p.name + ":" + key
}

// Set stages a SET for key with the given fields and notifies consumers.
func (p *ProducerStateTable) Set(ctx context.Context, key string, fields map[string]string) error {
	pipe := p.db.client.TxPipeline()
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if len(args) == 0 {
		args = append(args, "NULL", "NULL")
	}
	pipe.HSet(ctx, p.stagingKey(key), args...)
	pipe.SAdd(ctx, p.keySet, key)
	pipe.Publish(ctx, p.channel, "G")
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("producing %s %s: %w", p.name, key, err)
	}
	return nil
}

// Del stages a DEL for key and notifies consumers.
func (p *ProducerStateTable) Del(ctx context.Context, key string) error {
	pipe := p.db.client.TxPipeline()
	pipe.Del(ctx, p.stagingKey(key))
	pipe.SAdd(ctx, p.keySet, key)
	pipe.Publish(ctx, p.channel, "G")
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("producing del %s %s: %w", p.name, key, err)
	}
	return nil
}
