package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"pressrun"`
	Password string `env:"PASSWORD"                envDefault:"pressrun"`
	Name     string `env:"NAME"                    envDefault:"pressrun"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelPort       string   `env:"SENTINEL_PORT"        envDefault:"26379"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// CacheConfig contains pricing-rule cache configuration (Redis-based).
type CacheConfig struct {
	// Enabled toggles the Redis read-through cache in front of pricing rules.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"false"`

	// PricingRuleTTL is the TTL for cached pricing rules. A stale rule can
	// only affect jobs that are not yet frozen; frozen jobs store computed
	// amounts, not rule references.
	PricingRuleTTL time.Duration `env:"CACHE_PRICING_RULE_TTL" envDefault:"30m"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.PricingRuleTTL <= 0 {
		c.PricingRuleTTL = 30 * time.Minute
	}
}
