package lock

// Config holds configuration for per-user locking.
type Config struct {
	// Driver selects the implementation (local, redis).
	Driver string `mapstructure:"driver" default:"local"`
	// RedisAddr is the host:port of the Redis server.
	RedisAddr string `mapstructure:"redis_addr" default:"localhost:6379"`
	// RedisPassword is the Redis password.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB is the Redis database number.
	RedisDB int `mapstructure:"redis_db" default:"0"`
	// TTLSeconds bounds how long a crashed holder can keep a Redis lease.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"30"`
	// RetryMillis is the polling interval while waiting for a Redis lease.
	RetryMillis int `mapstructure:"retry_millis" default:"25"`
}

const (
	DriverLocal = "local"
	DriverRedis = "redis"
)
