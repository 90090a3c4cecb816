package swss

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// DBConnector wraps a redis client bound to one SONiC database number.
type DBConnector struct {
	client *redis.Client
	db     int
}

// NewDBConnector creates a connector for the given database number.
func NewDBConnector(addr string, db int) *DBConnector {
	return &DBConnector{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		db: db,
	}
}

// Connect tests the connection.
func (c *DBConnector) Connect(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to redis db %d: %w", c.db, err)
	}
	return nil
}

// Close closes the connection.
func (c *DBConnector) Close() error {
	return c.client.Close()
}
