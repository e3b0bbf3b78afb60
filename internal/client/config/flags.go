package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   server base URL (e.g. http://localhost:5000)
//	-k string   shared message passphrase
//	-i int      open chat refresh interval, seconds
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-k", "-i"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.Passphrase, "k", cfg.Passphrase, "shared message passphrase")
	chat := fs.Int("i", int(cfg.ChatInterval.Seconds()), "chat refresh interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.ChatInterval = time.Duration(*chat) * time.Second
		}
	})
	return nil
}
