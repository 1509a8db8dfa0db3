package config

import "time"

// DispatcherConfig contains outbox dispatcher configuration.
type DispatcherConfig struct {
	// Interval is the dispatcher tick interval.
	Interval time.Duration `env:"DISPATCHER_INTERVAL" envDefault:"5s"`

	// BatchSize is the maximum number of pending events claimed per tick.
	BatchSize int `env:"DISPATCHER_BATCH_SIZE" envDefault:"50"`

	// MaxAttempts is the delivery attempt count at which a failing event is
	// escalated to the failure sink. Zero disables escalation.
	MaxAttempts int `env:"DISPATCHER_MAX_ATTEMPTS" envDefault:"5"`
}

// Sanitize applies guardrails to dispatcher configuration values.
func (d *DispatcherConfig) Sanitize() {
	// Enforce a minimum interval to prevent tight polling loops against the
	// outbox table.
	if d.Interval < time.Second {
		d.Interval = time.Second
	}
	if d.BatchSize < 1 {
		d.BatchSize = 1
	}
	if d.BatchSize > 1000 {
		d.BatchSize = 1000
	}
	if d.MaxAttempts < 0 {
		d.MaxAttempts = 0
	}
}
