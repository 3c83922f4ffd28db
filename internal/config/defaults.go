package config

import "strings"

const (
	defaultHost                   = "tsl.tinysoft.com.cn"
	defaultPort                   = 443
	defaultTimeoutSeconds         = 15
	defaultMaxRetries             = 3
	defaultRetryBackoffMS         = 500
	defaultBreakerThreshold       = 5
	defaultBreakerCooldownSeconds = 30
)

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.App.LogLevel) == "" {
		c.App.LogLevel = "info"
	}
	ts := &c.Tinysoft
	ts.Host = strings.TrimSpace(ts.Host)
	if ts.Host == "" {
		ts.Host = defaultHost
	}
	if ts.Port <= 0 {
		ts.Port = defaultPort
	}
	if ts.TimeoutSeconds <= 0 {
		ts.TimeoutSeconds = defaultTimeoutSeconds
	}
	if ts.MaxRetries <= 0 {
		ts.MaxRetries = defaultMaxRetries
	}
	if ts.RetryBackoffMS <= 0 {
		ts.RetryBackoffMS = defaultRetryBackoffMS
	}
	if ts.BreakerThreshold <= 0 {
		ts.BreakerThreshold = defaultBreakerThreshold
	}
	if ts.BreakerCooldownSeconds <= 0 {
		ts.BreakerCooldownSeconds = defaultBreakerCooldownSeconds
	}
}
