package config

import (
	"flag"
	"os"

	"github.com/avolkov/scanonce/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-f string   path to the local session database file (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL to access server")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path to local session database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
