package swss

import (
	"context"
	"fmt"
)

// Table is direct hash access to one database table. STATE_DB tables use
// "|" as the key separator, APPL_DB tables use ":".
type Table struct {
	db        *DBConnector
	name      string
	separator string
}

// NewTable creates a table view over db.
func NewTable(db *DBConnector, name, separator string) *Table {
	return &Table{db: db, name: name, separator: separator}
}

func (t *Table) redisKey(key string) string {
	return t.name + t.separator + key
}

// Get reads a record. A missing key returns (nil, false, nil).
func (t *Table) Get(ctx context.Context, key string) (map[string]string, bool, error) {
	vals, err := t.db.client.HGetAll(ctx, t.redisKey(key)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", t.redisKey(key), err)
	}
	if len(vals) == 0 {
		return nil, false, nil
	}
	return vals, true, nil
}

// Set writes a record's fields.
func (t *Table) Set(ctx context.Context, key string, fields map[string]string) error {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if len(args) == 0 {
		// Empty record - write the NULL sentinel (SONiC convention).
		args = append(args, "NULL", "NULL")
	}
	if err := t.db.client.HSet(ctx, t.redisKey(key), args...).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", t.redisKey(key), err)
	}
	return nil
}

// Keys lists the record keys present in the table.
func (t *Table) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	prefix := t.name + t.separator
	iter := t.db.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", t.name, err)
	}
	return keys, nil
}

// Del removes a record.
func (t *Table) Del(ctx context.Context, key string) error {
	if err := t.db.client.Del(ctx, t.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", t.redisKey(key), err)
	}
	return nil
}
