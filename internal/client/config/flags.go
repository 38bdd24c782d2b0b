package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/securechat/internal/flagx"
)

// parseFlags overlays Config with the flags it owns:
//
//	-a string   base URL of the relay
//	-s string   directory for local state
//	-t int      request timeout in seconds
//
// Other arguments are left for the command tree.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the relay")
	fs.StringVar(&cfg.StateDir, "s", cfg.StateDir, "directory for local state")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
