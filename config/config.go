package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database and cache configuration
//   - dispatcher.go: Outbox dispatcher configuration
//   - settlement.go: Settlement and pricing guardrails
//   - intake.go: Document intake and file storage configuration
//   - observability.go: Metrics and notification fan-out
type AppConfig struct {
	// IsDev controls development mode behavior (seed data, relaxed guards).
	IsDev bool `env:"DEV" envDefault:"false"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	// Outbox dispatcher configuration
	Dispatcher DispatcherConfig

	// Settlement configuration
	Settlement SettlementConfig

	// Document intake configuration
	Intake IntakeConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Cache.Sanitize()
	c.Dispatcher.Sanitize()
	c.Settlement.Sanitize()
	c.Intake.Sanitize()
	c.Observability.Sanitize()
}
