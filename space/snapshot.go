package space

import (
	"os"
	"strings"
)

// snapshot is the ambient process state captured when a space is entered:
// the full environment table and the working directory it should return to.
type snapshot struct {
	env map[string]string
	// wd is empty when the working directory could not be resolved at
	// capture time (it may have been deleted under us). That is degraded
	// but nonfatal: exit then has nowhere to chdir back to and reports it.
	wd string
}

// captureSnapshot reads the current environment and working directory.
// It is best-effort and never fails: a space must always be able to
// restore later, even if there was nothing to capture.
func captureSnapshot() snapshot {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[key] = value
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}

	return snapshot{env: env, wd: wd}
}

// restoreEnv reconciles the live environment table back to the captured
// set. First pass: every variable currently set is reset to its captured
// value, or unset if it was not captured. Second pass: every captured
// variable no longer present is set back. The two passes are a pure set
// reconciliation; their order does not affect the end state.
//
// Consumes the snapshot's env map; call once, at exit.
func (s *snapshot) restoreEnv() {
	for _, kv := range os.Environ() {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if saved, present := s.env[key]; present {
			_ = os.Setenv(key, saved)
			delete(s.env, key)
		} else {
			_ = os.Unsetenv(key)
		}
	}
	for key, saved := range s.env {
		_ = os.Setenv(key, saved)
	}
	s.env = nil
}
