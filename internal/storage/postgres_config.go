package storage

import "time"

// PostgresConfig describes how the repository initialises its Postgres
// connection pool.
type PostgresConfig struct {
	DSN                 string
	MaxConnections      int32
	MinConnections      int32
	MaxConnLifetime     time.Duration
	MaxConnIdleTime     time.Duration
	HealthCheckInterval time.Duration
	ConnectTimeout      time.Duration
	ApplicationName     string
}

// Option adjusts the Postgres pool configuration.
type Option func(*PostgresConfig)

// WithMaxConnections caps the pool size.
func WithMaxConnections(max int32) Option {
	return func(cfg *PostgresConfig) {
		if max > 0 {
			cfg.MaxConnections = max
		}
	}
}

// WithMinConnections keeps a floor of warm connections in the pool.
func WithMinConnections(min int32) Option {
	return func(cfg *PostgresConfig) {
		if min >= 0 {
			cfg.MinConnections = min
		}
	}
}

// WithConnLifetimes bounds how long pooled connections live and idle.
func WithConnLifetimes(lifetime, idle time.Duration) Option {
	return func(cfg *PostgresConfig) {
		if lifetime > 0 {
			cfg.MaxConnLifetime = lifetime
		}
		if idle > 0 {
			cfg.MaxConnIdleTime = idle
		}
	}
}

// WithHealthCheckInterval sets how often the pool pings idle connections.
func WithHealthCheckInterval(interval time.Duration) Option {
	return func(cfg *PostgresConfig) {
		if interval > 0 {
			cfg.HealthCheckInterval = interval
		}
	}
}

// WithConnectTimeout bounds how long a new connection attempt may take.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(cfg *PostgresConfig) {
		if timeout > 0 {
			cfg.ConnectTimeout = timeout
		}
	}
}

// WithApplicationName labels connections in pg_stat_activity.
func WithApplicationName(name string) Option {
	return func(cfg *PostgresConfig) {
		cfg.ApplicationName = name
	}
}

func newPostgresConfig(dsn string, opts ...Option) PostgresConfig {
	cfg := PostgresConfig{
		DSN:             dsn,
		MinConnections:  -1,
		ApplicationName: "masterpieces-api",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
