package config

import (
	"os"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	cfg.CoverDir = "/data/covers"
	cfg.DatabaseFilePath = "/data/data.sqlite"
	cfg.ServerHost = "0.0.0.0"

	if v := os.Getenv("DATABASE_FILE_PATH"); v != "" {
		cfg.DatabaseFilePath = v
	}
	if v := os.Getenv("COVER_DIR"); v != "" {
		cfg.CoverDir = v
	}
}
