package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tslfeed/internal/config"
	"tslfeed/internal/logger"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "tslfeed",
	Short:        "TinySoft 历史行情查询工具",
	Long:         "Fetch historical bars and ticks for Chinese futures and options from the TinySoft data service.",
	SilenceUsage: true,
}

func init() {
	defaultCfg := os.Getenv("TSLFEED_CONFIG")
	if defaultCfg == "" {
		defaultCfg = "configs/config.yaml"
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultCfg, "config file path")
	rootCmd.AddCommand(barsCmd)
	rootCmd.AddCommand(ticksCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := setupLogOutput(cfg.App.LogPath); err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.App.LogLevel)
	return cfg, nil
}

// setupLogOutput tees logs to stderr and the configured file. The file
// handle stays open for the life of the process.
func setupLogOutput(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	mw := io.MultiWriter(os.Stderr, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
