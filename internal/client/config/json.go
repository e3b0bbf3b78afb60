package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/flagx"
	"github.com/dmitrijs2005/defcomm/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// accept strings like "5s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL         string         `json:"server_url"`
	Passphrase        string         `json:"passphrase"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	SessionInterval   timex.Duration `json:"session_interval"`
	ApprovalsInterval timex.Duration `json:"approvals_interval"`
	DirectoryInterval timex.Duration `json:"directory_interval"`
	GroupsInterval    timex.Duration `json:"groups_interval"`
	ChatInterval      timex.Duration `json:"chat_interval"`
}

// parseJson overlays values from the file named by -c/-config. Absent
// fields keep their current value.
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

	if c.ServerURL != "" {
		config.ServerURL = c.ServerURL
	}
	if c.Passphrase != "" {
		config.Passphrase = c.Passphrase
	}
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setDuration(&config.SessionInterval, c.SessionInterval)
	setDuration(&config.ApprovalsInterval, c.ApprovalsInterval)
	setDuration(&config.DirectoryInterval, c.DirectoryInterval)
	setDuration(&config.GroupsInterval, c.GroupsInterval)
	setDuration(&config.ChatInterval, c.ChatInterval)
	return nil
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
