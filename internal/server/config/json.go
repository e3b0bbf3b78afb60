package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/defcomm/internal/flagx"
	"github.com/dmitrijs2005/defcomm/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// both strings ("30d", "10s") and integer nanoseconds.
type JsonConfig struct {
	Env              string         `json:"env"`
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	SessionTTL       timex.Duration `json:"session_ttl"`
	FrontendURL      string         `json:"frontend_url"`
	MetricsEnabled   *bool          `json:"metrics_enabled"`
	BodyLimit        int64          `json:"body_limit"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
	HQUserName       string         `json:"hq_username"`
	HQPassword       string         `json:"hq_password"`
}

// parseJson overlays the file named by -c/-config onto config. Fields that
// are absent from the file keep their current value.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.Env, c.Env)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.HQUserName, c.HQUserName)
	setString(&config.HQPassword, c.HQPassword)
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.MetricsEnabled != nil {
		config.MetricsEnabled = *c.MetricsEnabled
	}
	if c.BodyLimit != 0 {
		config.BodyLimit = c.BodyLimit
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
