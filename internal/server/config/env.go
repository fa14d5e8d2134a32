package config

import "os"

// parseEnv overlays Config with environment variables. The server binary
// loads a .env file (godotenv) before this runs, so both real env vars and
// dotenv entries land here.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("SERVER_ADDRESS"); ok {
		cfg.EndpointAddrHTTP = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		cfg.SecretKey = v
	}
	if v, ok := os.LookupEnv("MIN_ENTRY_DATE"); ok {
		cfg.MinEntryDate = v
	}
}
