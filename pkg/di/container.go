// Package di wires the caching core, the remote tier, and the directory
// service into a single construction point with a clear lifecycle: one
// container per process, never reconstructed mid-run.
package di

import (
	"io"

	"go.uber.org/zap"

	"github.com/smccd/siteindex-cache/cache"
	"github.com/smccd/siteindex-cache/directory"
)

// Container holds singleton instances of the cache components and
// provides factory methods for services built on them.
type Container struct {
	cfg         cache.Config
	memory      *cache.MemoryTier
	remote      cache.RemoteStore
	readThrough *cache.ReadThrough
	keys        *cache.KeyBuilder
	fanout      *cache.FanOut
	stats       *cache.StatsTracker
	log         *zap.Logger

	stopSweep func()
}

// NewContainer validates the configuration, connects the remote tier, and
// assembles the cache graph. With an empty remote Addr the container runs
// memory-only behind a no-op remote tier.
func NewContainer(cfg cache.Config, remoteCfg cache.RemoteConfig, log *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if remoteCfg.Addr != "" {
		if err := remoteCfg.Validate(); err != nil {
			return nil, err
		}
	}

	remote, err := cache.NewRemoteCache(remoteCfg, log)
	if err != nil {
		return nil, err
	}
	return NewContainerWithRemote(cfg, remote, log)
}

// NewContainerWithRemote assembles the cache graph around a caller-managed
// remote tier. Tests use it to substitute fakes.
func NewContainerWithRemote(cfg cache.Config, remote cache.RemoteStore, log *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	memory := cache.NewMemoryTier(cfg.MemoryCapacity)
	keys := cache.NewKeyBuilder(cfg.Namespace)

	c := &Container{
		cfg:         cfg,
		memory:      memory,
		remote:      remote,
		readThrough: cache.NewReadThrough(memory, remote, cfg.TTL, log),
		keys:        keys,
		fanout:      cache.NewFanOut(keys, memory, remote, log),
		stats:       cache.NewStatsTracker(remote, cfg.StatsPrefix, log),
		log:         log,
	}
	if cfg.SweepInterval > 0 {
		c.stopSweep = memory.StartSweep(cfg.SweepInterval)
	}
	return c, nil
}

// NewContainerWithDefaults assembles a container from default
// configuration and the SITEINDEX_REDIS_* environment.
func NewContainerWithDefaults(log *zap.Logger) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), cache.RemoteConfigFromEnv(), log)
}

// DirectoryService builds the cached directory surface over the given
// repository.
func (c *Container) DirectoryService(repo directory.Repository) *directory.Service {
	return directory.NewService(repo, c.readThrough, c.keys, c.cfg.TTL, c.fanout, c.stats, c.log)
}

// ReadThrough returns the shared read-through orchestrator.
func (c *Container) ReadThrough() *cache.ReadThrough { return c.readThrough }

// MemoryTier returns the process-wide memory tier.
func (c *Container) MemoryTier() *cache.MemoryTier { return c.memory }

// RemoteCache returns the shared remote tier.
func (c *Container) RemoteCache() cache.RemoteStore { return c.remote }

// KeyBuilder returns the singleton key builder.
func (c *Container) KeyBuilder() *cache.KeyBuilder { return c.keys }

// FanOut returns the invalidation fan-out.
func (c *Container) FanOut() *cache.FanOut { return c.fanout }

// StatsTracker returns the hit/miss tracker.
func (c *Container) StatsTracker() *cache.StatsTracker { return c.stats }

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config { return c.cfg }

// Close stops the background sweep and releases the remote tier's
// connections.
func (c *Container) Close() error {
	if c.stopSweep != nil {
		c.stopSweep()
	}
	if closer, ok := c.remote.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
