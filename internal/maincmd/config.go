package maincmd

import "github.com/caarlos0/env/v6"

// Config holds the environment-variable debug toggles: HYPL_TRACE is
// equivalent to the `-d` flag, and HYPL_GC_STRESS has no command-line flag
// at all, so the environment is the only way to turn it on.
type Config struct {
	GCStress bool `env:"HYPL_GC_STRESS"`
	Trace    bool `env:"HYPL_TRACE"`
}

func loadConfig() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}
