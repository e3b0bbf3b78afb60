package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dmitrijs2005/defcomm/internal/timex"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// envKeys maps viper keys to the variable names operators set.
var envKeys = map[string]string{
	"env":             "APP_ENV",
	"port":            "PORT",
	"database_url":    "DATABASE_URL",
	"jwt_secret":      "JWT_SECRET",
	"jwt_expire":      "JWT_EXPIRE",
	"frontend_url":    "FRONTEND_URL",
	"metrics_enabled": "METRICS_ENABLED",
	"hq_username":     "HQ_USERNAME",
	"hq_password":     "HQ_PASSWORD",
}

// parseEnv overlays environment variables onto config. Variables from
// dotenv are loaded first without overriding ones already exported; a
// missing dotenv file is not an error.
func parseEnv(config *Config, dotenv string) error {
	if dotenv != "" {
		if err := gotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	v := viper.New()
	for key, name := range envKeys {
		if err := v.BindEnv(key, name); err != nil {
			return err
		}
	}

	if v.IsSet("env") {
		config.Env = v.GetString("env")
	}
	if v.IsSet("port") {
		config.EndpointAddrHTTP = listenAddr(v.GetString("port"))
	}
	if v.IsSet("database_url") {
		config.DatabaseDSN = v.GetString("database_url")
	}
	if v.IsSet("jwt_secret") {
		config.SecretKey = v.GetString("jwt_secret")
	}
	if v.IsSet("jwt_expire") {
		ttl, err := timex.ParseDuration(v.GetString("jwt_expire"))
		if err != nil {
			return fmt.Errorf("JWT_EXPIRE: %w", err)
		}
		config.SessionTTL = ttl
	}
	if v.IsSet("frontend_url") {
		config.FrontendURL = v.GetString("frontend_url")
	}
	if v.IsSet("metrics_enabled") {
		config.MetricsEnabled = v.GetBool("metrics_enabled")
	}
	if v.IsSet("hq_username") {
		config.HQUserName = v.GetString("hq_username")
	}
	if v.IsSet("hq_password") {
		config.HQPassword = v.GetString("hq_password")
	}
	return nil
}

// listenAddr accepts a bare port ("5000") or a full host:port.
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
