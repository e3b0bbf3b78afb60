// Package flagx lets several independent flag sets share one command line.
// Each consumer filters os.Args down to the flags it owns before parsing.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps only the arguments that belong to the named flags.
//
// A flag is kept together with its value when written as "-f=value" or as
// "-f value". A following token that starts with "-" is never taken as a
// value, so boolean flags such as "-m" followed by another flag stay
// self-contained. Flags listed in boolFlags never consume the next token.
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	known := make(map[string]bool, len(allowed)+len(boolFlags))
	for _, name := range allowed {
		known[name] = false
	}
	for _, name := range boolFlags {
		known[name] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		isBool, ok := known[name]
		if !ok {
			continue
		}
		out = append(out, arg)
		if hasValue || isBool {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath returns the JSON config file given with -c or -config, or ""
// when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
