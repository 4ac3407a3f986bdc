package config

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// loadEnvFile loads a .env file from the working directory once per
// process. Variables already set in the environment win, so shell
// exports override the file.
func loadEnvFile() {
	envOnce.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		if err := godotenv.Load(); err != nil {
			slog.Warn("failed to load .env file", "error", err)
		}
	})
}
