package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/daybook-app/daybook/internal/flagx"
	"github.com/daybook-app/daybook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify lifetimes either as strings like "15m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	MagicLinkValidityDuration   timex.Duration `json:"magic_link_validity_duration"`
	MinEntryDate                string         `json:"min_entry_date"`
}

// parseJson overlays Config with values loaded from a JSON file whose path
// comes from the -c/-config flags. With no such flag the function returns
// without touching cfg. Read or unmarshal errors panic; intended usage is
// defaults -> parseJson -> parseEnv -> parseFlags.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddrHTTP != "" {
		cfg.EndpointAddrHTTP = jc.EndpointAddrHTTP
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenValidityDuration.Duration != 0 {
		cfg.AccessTokenValidityDuration = time.Duration(jc.AccessTokenValidityDuration.Duration)
	}
	if jc.MagicLinkValidityDuration.Duration != 0 {
		cfg.MagicLinkValidityDuration = time.Duration(jc.MagicLinkValidityDuration.Duration)
	}
	if jc.MinEntryDate != "" {
		cfg.MinEntryDate = jc.MinEntryDate
	}
}
