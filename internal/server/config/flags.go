package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-d string   database URL; memory:// selects the in-process store
//	-s string   JWT HMAC secret
//	-t int      session lifetime, minutes
//	-e string   environment name (development, production)
//	-f string   frontend origin allowed by CORS
//	-m          expose /metrics
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-e", "-f"}, "-m")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "jwt secret")
	ttl := fs.Int("t", int(config.SessionTTL.Minutes()), "session lifetime (in minutes)")
	fs.StringVar(&config.Env, "e", config.Env, "environment")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend origin")
	fs.BoolVar(&config.MetricsEnabled, "m", config.MetricsEnabled, "enable /metrics")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
