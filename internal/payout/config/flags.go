package config

import (
	"flag"
	"os"
	"time"

	"expenses/internal/flagx"
)

// parseFlags populates selected payout Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   Expenses API base URL
//	-t string   OAuth2 token endpoint URL
//	-i string   client id
//	-s string   client secret (prefer the JSON file or the prompt)
//	-o string   requested scope
//	-j string   payout journal path
//	-w int      request timeout, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-i", "-s", "-o", "-j", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.APIBaseURL, "a", config.APIBaseURL, "Expenses API base URL")
	fs.StringVar(&config.TokenURL, "t", config.TokenURL, "OAuth2 token endpoint")
	fs.StringVar(&config.ClientID, "i", config.ClientID, "client id")
	fs.StringVar(&config.ClientSecret, "s", config.ClientSecret, "client secret")
	fs.StringVar(&config.Scope, "o", config.Scope, "requested scope")
	fs.StringVar(&config.JournalPath, "j", config.JournalPath, "payout journal path")

	requestTimeout := fs.Int("w", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
