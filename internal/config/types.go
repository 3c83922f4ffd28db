package config

// Config 是 tslfeed 的主配置载体。
type Config struct {
	App      AppConfig      `toml:"app"`
	Tinysoft TinysoftConfig `toml:"tinysoft"`
}

type AppConfig struct {
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
}

// TinysoftConfig 描述天软数据网关的访问方式与重试参数。
type TinysoftConfig struct {
	Host               string `toml:"host"`
	Port               int    `toml:"port"`
	Username           string `toml:"username"`
	Password           string `toml:"password"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`

	// 重试与熔断
	MaxRetries             int `toml:"max_retries"`
	RetryBackoffMS         int `toml:"retry_backoff_ms"`
	BreakerThreshold       int `toml:"breaker_threshold"`
	BreakerCooldownSeconds int `toml:"breaker_cooldown_seconds"`
}
