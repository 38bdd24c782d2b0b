package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/securechat/internal/flagx"
	"github.com/dmitrijs2005/securechat/internal/timex"
)

// JsonConfig is the on-disk shape of the client configuration. Absent
// fields keep their current value.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	StateDir       *string         `json:"state_dir"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with the file named by -c/-config. It panics on
// read or unmarshal errors.
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

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.StateDir != nil {
		cfg.StateDir = *jc.StateDir
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
