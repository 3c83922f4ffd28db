package config

import (
	"fmt"
	"strings"
)

func validate(cfg *Config) error {
	ts := cfg.Tinysoft
	if ts.Port <= 0 || ts.Port > 65535 {
		return fmt.Errorf("tinysoft.port 超出范围: %d", ts.Port)
	}
	if strings.TrimSpace(ts.Username) == "" {
		return fmt.Errorf("tinysoft.username 不能为空")
	}
	if strings.TrimSpace(ts.Password) == "" {
		return fmt.Errorf("tinysoft.password 不能为空")
	}
	return nil
}
