// Package flagx helps several independent parsers share one command line.
// Each parser filters os.Args down to the flags it owns before parsing, so
// unknown flags from other components never cause parse errors.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the subset of args that belong to allowedFlags, keeping
// separate values ("-c conf.json") and inline values ("--config=conf.json").
// A value is only attached when the next argument does not look like a flag.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFile extracts the JSON config path given via -c or -config.
// It returns "" when neither flag is present.
func ConfigFile(args []string) string {
	return stringFlag(args, "", "config", "c")
}

// EnvFile extracts the dotenv file path given via -env. When the flag is
// absent it returns def.
func EnvFile(args []string, def string) string {
	return stringFlag(args, def, "env")
}

func stringFlag(args []string, def string, names ...string) string {
	allowed := make([]string, 0, len(names)*2)
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}

	value := def
	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, def, "")
	}
	_ = fs.Parse(FilterArgs(args, allowed))

	return value
}
