package workflow

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// schemaSource is the slice of the database layer the cache needs.
type schemaSource interface {
	DescribeSchema(ctx context.Context) (string, error)
}

// schemaCache holds the schema description across turns. A TTL of zero keeps
// the first description for the life of the process; concurrent refreshes are
// deduplicated so the database sees at most one describe at a time.
type schemaCache struct {
	source schemaSource
	ttl    time.Duration

	group     singleflight.Group
	text      string
	fetchedAt time.Time
}

func newSchemaCache(source schemaSource, ttl time.Duration) *schemaCache {
	return &schemaCache{source: source, ttl: ttl}
}

// get returns the cached description, refreshing it when stale.
func (c *schemaCache) get(ctx context.Context) (string, error) {
	v, err, _ := c.group.Do("schema", func() (any, error) {
		if c.text != "" && (c.ttl == 0 || time.Since(c.fetchedAt) < c.ttl) {
			return c.text, nil
		}
		text, err := c.source.DescribeSchema(ctx)
		if err != nil {
			return "", err
		}
		c.text = text
		c.fetchedAt = time.Now()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
