package config

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/cryptox"
)

// Config holds runtime settings for the DefComm terminal client.
type Config struct {
	ServerURL      string
	Passphrase     string
	RequestTimeout time.Duration

	SessionInterval   time.Duration
	ApprovalsInterval time.Duration
	DirectoryInterval time.Duration
	GroupsInterval    time.Duration
	ChatInterval      time.Duration
}

// LoadDefaults populates c with the intervals the web client uses.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000"
	c.Passphrase = cryptox.DefaultPassphrase
	c.RequestTimeout = 10 * time.Second
	c.SessionInterval = 20 * time.Second
	c.ApprovalsInterval = 30 * time.Second
	c.DirectoryInterval = 30 * time.Second
	c.GroupsInterval = 45 * time.Second
	c.ChatInterval = 5 * time.Second
}

func (c *Config) Validate() error {
	var errs []error
	if c.ServerURL == "" {
		errs = append(errs, errors.New("server url is required"))
	}
	if c.Passphrase == "" {
		errs = append(errs, errors.New("passphrase is required"))
	}
	for _, d := range []time.Duration{c.SessionInterval, c.ApprovalsInterval, c.DirectoryInterval, c.GroupsInterval, c.ChatInterval} {
		if d <= 0 {
			errs = append(errs, errors.New("polling intervals must be positive"))
			break
		}
	}
	return errors.Join(errs...)
}

// LoadConfig applies defaults, then the JSON file, then flags. Later
// sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
