package corpus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for the Redis corpus backend.
type RedisConfig struct {
	RedisURL    string `yaml:"redis_url"`
	KeyPrefix   string `yaml:"key_prefix"`
	DatabaseNum int    `yaml:"database_num"`
}

// RedisSource keeps a corpus in Redis lists: author names in order under
// <prefix>:authors and each author's documents under
// <prefix>:author:<name>:docs.
type RedisSource struct {
	client *redis.Client
	prefix string
}

// NewRedisSource connects to Redis and checks the connection.
func NewRedisSource(ctx context.Context, cfg RedisConfig) (*RedisSource, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %v", err)
	}
	opt.DB = cfg.DatabaseNum
	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis connection failed: %v", err)
	}

	return NewRedisSourceFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisSourceFromClient wraps an existing client.
func NewRedisSourceFromClient(client *redis.Client, prefix string) *RedisSource {
	if prefix == "" {
		prefix = "whowrote:corpus"
	}
	return &RedisSource{client: client, prefix: prefix}
}

func (rs *RedisSource) authorsKey() string {
	return rs.prefix + ":authors"
}

func (rs *RedisSource) docsKey(name string) string {
	return fmt.Sprintf("%s:author:%s:docs", rs.prefix, name)
}

// Load reads the author list, then every document list in one pipeline.
func (rs *RedisSource) Load(ctx context.Context) (*Corpus, error) {
	names, err := rs.client.LRange(ctx, rs.authorsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read authors: %v", err)
	}
	if len(names) == 0 {
		return nil, ErrEmptyCorpus
	}

	pipe := rs.client.Pipeline()
	cmds := make([]*redis.StringSliceCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.LRange(ctx, rs.docsKey(name), 0, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read documents: %v", err)
	}

	c := &Corpus{Authors: make([]Author, len(names))}
	for i, name := range names {
		c.Authors[i] = Author{Name: name, Documents: cmds[i].Val()}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save replaces the stored corpus inside a MULTI/EXEC transaction.
func (rs *RedisSource) Save(ctx context.Context, c *Corpus) error {
	if err := c.Validate(); err != nil {
		return err
	}

	old, err := rs.client.LRange(ctx, rs.authorsKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read authors: %v", err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, rs.authorsKey())
	for _, name := range old {
		pipe.Del(ctx, rs.docsKey(name))
	}
	for _, a := range c.Authors {
		pipe.RPush(ctx, rs.authorsKey(), a.Name)
		docs := make([]interface{}, len(a.Documents))
		for i, d := range a.Documents {
			docs[i] = d
		}
		pipe.Del(ctx, rs.docsKey(a.Name))
		pipe.RPush(ctx, rs.docsKey(a.Name), docs...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store corpus: %v", err)
	}
	return nil
}

// Reset deletes the stored corpus.
func (rs *RedisSource) Reset(ctx context.Context) error {
	names, err := rs.client.LRange(ctx, rs.authorsKey(), 0, -1).Result()
	if err != nil {
		return err
	}
	keys := []string{rs.authorsKey()}
	for _, name := range names {
		keys = append(keys, rs.docsKey(name))
	}
	return rs.client.Del(ctx, keys...).Err()
}

// Close closes the Redis connection.
func (rs *RedisSource) Close() error {
	return rs.client.Close()
}

var _ Source = (*RedisSource)(nil)
var _ Sink = (*RedisSource)(nil)
