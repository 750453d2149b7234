package space

import "os"

// EnvVar is one set-or-unset instruction for the process environment.
// Build them with Set and Unset rather than filling the struct directly.
type EnvVar struct {
	Key   string
	Value string
	// Unset removes the variable instead of setting it; Value is ignored.
	Unset bool
}

// Set returns an EnvVar that sets key to value.
func Set(key, value string) EnvVar {
	return EnvVar{Key: key, Value: value}
}

// Unset returns an EnvVar that removes key from the environment.
func Unset(key string) EnvVar {
	return EnvVar{Key: key, Unset: true}
}

// applyEnv applies the instructions in order against the live process
// environment. Setenv/Unsetenv only fail on malformed keys, which the
// snapshot reconciliation at exit makes harmless, so errors are dropped.
func applyEnv(vars []EnvVar) {
	for _, v := range vars {
		if v.Unset {
			_ = os.Unsetenv(v.Key)
		} else {
			_ = os.Setenv(v.Key, v.Value)
		}
	}
}
