package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"vitasurvey/internal/model"
)

const treeKey = "survey:tree"

// TreeCache holds the validated category tree so sessions don't hit Mongo on every request.
// Pinned copies are kept per tree version for sessions started on an older catalog.
type TreeCache interface {
	Get(ctx context.Context) (*model.Tree, error)
	Set(ctx context.Context, tree model.Tree) error
	Invalidate(ctx context.Context) error
	Pin(ctx context.Context, tree model.Tree) error
	Pinned(ctx context.Context, version string) (*model.Tree, error)
}

type treeCache struct {
	client *redis.Client
	ttl    time.Duration
	pinTTL time.Duration
}

// NewTreeCache creates a new tree cache. Pinned trees expire pinTTL after they were
// last pinned.
func NewTreeCache(client *redis.Client, ttl, pinTTL time.Duration) TreeCache {
	return &treeCache{
		client: client,
		ttl:    ttl,
		pinTTL: pinTTL,
	}
}

func (c *treeCache) pinKey(version string) string {
	return treeKey + ":" + version
}

func (c *treeCache) Get(ctx context.Context) (*model.Tree, error) {
	return c.get(ctx, treeKey)
}

func (c *treeCache) Set(ctx context.Context, tree model.Tree) error {
	return c.set(ctx, treeKey, tree, c.ttl)
}

func (c *treeCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, treeKey).Err()
}

func (c *treeCache) Pin(ctx context.Context, tree model.Tree) error {
	return c.set(ctx, c.pinKey(tree.Version()), tree, c.pinTTL)
}

func (c *treeCache) Pinned(ctx context.Context, version string) (*model.Tree, error) {
	return c.get(ctx, c.pinKey(version))
}

func (c *treeCache) get(ctx context.Context, key string) (*model.Tree, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tree model.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

func (c *treeCache) set(ctx context.Context, key string, tree model.Tree, ttl time.Duration) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}
