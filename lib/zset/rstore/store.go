package rstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/zMap/lib/zset"
	"github.com/VictoriaMetrics/metrics"
	"github.com/go-redis/redis/v7"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var (
	metricBatches  = metrics.GetOrCreateCounter(`zmap_store_batches_total`)
	metricExpireAt = metrics.GetOrCreateCounter(`zmap_store_commands_total{op="expireat"}`)
	metricAdd      = metrics.GetOrCreateCounter(`zmap_store_commands_total{op="zadd"}`)
	metricRemRange = metrics.GetOrCreateCounter(`zmap_store_commands_total{op="zremrangebyscore"}`)
	metricRange    = metrics.GetOrCreateCounter(`zmap_store_commands_total{op="zrangebyscore"}`)
	metricDelete   = metrics.GetOrCreateCounter(`zmap_store_commands_total{op="del"}`)
)

// --------------------------------------------------------------------------
// Redis store configuration struct
// --------------------------------------------------------------------------

// Config holds the connection parameters for the Redis server.
type Config struct {
	Addr     string // host:port of the Redis server
	Password string // empty = no auth
	DB       int    // Redis database number
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Redis Store")
	addField("Address", c.Addr)
	addField("Database", strconv.Itoa(c.DB))
	addField("Auth", fmt.Sprintf("%t", c.Password != ""))

	return sb.String()
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// storeImpl binds the zset.IZSetStore interface to a Redis server. Ordered
// sets map to Redis sorted sets, whole-key expiry to the native key TTL
// mechanism and pipelines to non-transactional Redis pipelines.
type storeImpl struct {
	client *redis.Client
}

var _ zset.IZSetStore = (*storeImpl)(nil)

// NewRedisStore creates a new Redis-backed store instance and verifies the
// connection with a ping.
func NewRedisStore(config Config) (zset.IZSetStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping().Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}

	Logger.Infof("connected to redis at %s (db %d)", config.Addr, config.DB)

	return &storeImpl{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client, e.g. one shared with
// other parts of an application.
func NewRedisStoreFromClient(client *redis.Client) zset.IZSetStore {
	return &storeImpl{client: client}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see zset/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Pipeline() zset.IZSetPipeline {
	// non-transactional on purpose: sub-operations must not be wrapped in
	// MULTI/EXEC, partial completion is tolerated by the callers
	return &pipelineImpl{pipe: s.client.Pipeline()}
}

func (s *storeImpl) DeleteAll(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	metricDelete.Inc()
	return s.client.Del(keys...).Err()
}

func (s *storeImpl) Close() error {
	return s.client.Close()
}

// --------------------------------------------------------------------------
// Pipeline
// --------------------------------------------------------------------------

// pipelineImpl queues commands on a go-redis pipeline. Range queries keep
// their command handles so results can be collected in submission order
// after Exec.
//
// Note: the shape of the sorted-set insert call (*redis.Z members) is a
// client-library convention and stays confined to this binding.
type pipelineImpl struct {
	pipe    redis.Pipeliner
	queued  int
	queries []*redis.StringSliceCmd
}

func (p *pipelineImpl) ExpireAt(key string, at int64) {
	metricExpireAt.Inc()
	p.queued++
	p.pipe.ExpireAt(key, time.Unix(at, 0))
}

func (p *pipelineImpl) Add(key string, members ...zset.Member) {
	if len(members) == 0 {
		return
	}
	metricAdd.Inc()
	p.queued++

	zs := make([]*redis.Z, len(members))
	for i, m := range members {
		zs[i] = &redis.Z{Score: float64(m.Score), Member: string(m.Value)}
	}
	p.pipe.ZAdd(key, zs...)
}

func (p *pipelineImpl) RemoveRangeByScore(key string, min, max int64) {
	metricRemRange.Inc()
	p.queued++
	p.pipe.ZRemRangeByScore(key, formatScore(min), formatScore(max))
}

func (p *pipelineImpl) RangeByScore(key string, min, max int64) {
	metricRange.Inc()
	p.queued++
	cmd := p.pipe.ZRangeByScore(key, &redis.ZRangeBy{
		Min: formatScore(min),
		Max: formatScore(max),
	})
	p.queries = append(p.queries, cmd)
}

func (p *pipelineImpl) Exec() ([][][]byte, error) {
	if p.queued == 0 {
		return nil, nil
	}

	metricBatches.Inc()

	if _, err := p.pipe.Exec(); err != nil && err != redis.Nil {
		return nil, err
	}

	results := make([][][]byte, len(p.queries))
	for i, cmd := range p.queries {
		values, err := cmd.Result()
		if err != nil && err != redis.Nil {
			return nil, err
		}
		raw := make([][]byte, len(values))
		for j, v := range values {
			raw[j] = []byte(v)
		}
		results[i] = raw
	}
	return results, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// formatScore renders an int64 score bound for the Redis range commands.
// zset.ScoreMax maps to the native positive infinity.
func formatScore(score int64) string {
	if score == zset.ScoreMax {
		return "+inf"
	}
	return strconv.FormatInt(score, 10)
}
