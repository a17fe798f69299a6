package config

import (
	"encoding/json"
	"os"
	"time"

	"expenses/internal/flagx"
	"expenses/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. It uses timex.Duration
// for the timeout so values can be either strings such as "10s" or integer
// nanoseconds.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	TokenURL       string         `json:"token_url"`
	ClientID       string         `json:"client_id"`
	ClientSecret   string         `json:"client_secret"`
	Scope          string         `json:"scope"`
	JournalPath    string         `json:"journal_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson loads configuration values from the JSON file given via the
// -c/-config flags into the provided Config. If no file is given, nothing is
// loaded. If the file cannot be read or contains invalid JSON, the function
// panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.APIBaseURL = c.APIBaseURL
	config.TokenURL = c.TokenURL
	config.ClientID = c.ClientID
	config.ClientSecret = c.ClientSecret
	config.Scope = c.Scope
	config.JournalPath = c.JournalPath
	config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
}
