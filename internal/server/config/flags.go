package config

import (
	"flag"
	"os"

	"github.com/daybook-app/daybook/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port to bind the HTTP endpoint
//	-d string   PostgreSQL DSN
//	-k string   JWT signing secret
//	-m string   minimum accepted entry date (YYYY-MM-DD, empty disables)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddrHTTP, "a", cfg.EndpointAddrHTTP, "address and port to bind the HTTP endpoint")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "JWT signing secret")
	fs.StringVar(&cfg.MinEntryDate, "m", cfg.MinEntryDate, "minimum accepted entry date (YYYY-MM-DD)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
