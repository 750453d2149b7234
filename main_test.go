package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/playpen/config"
	"github.com/kastheco/playpen/history"
	"github.com/kastheco/playpen/log"
	"github.com/kastheco/playpen/space"
)

func TestBuildOverrides_MergesPresetAndFlags(t *testing.T) {
	envFlags = []string{"FROM_FLAG=flag-value"}
	unsetFlags = []string{"DROP_ME"}
	t.Cleanup(func() { envFlags, unsetFlags = nil, nil })

	cfg := &config.Config{
		Env: config.EnvPreset{
			Set:   map[string]string{"FROM_PRESET": "preset-value"},
			Unset: []string{"PRESET_DROP"},
		},
	}

	overrides, err := buildOverrides(cfg)
	require.NoError(t, err)
	require.Len(t, overrides, 4)

	// Flags come after the preset so they win when both touch a key.
	assert.Equal(t, space.Set("FROM_FLAG", "flag-value"), overrides[2])
	assert.Equal(t, space.Unset("DROP_ME"), overrides[3])
}

func TestBuildOverrides_RejectsMalformedFlags(t *testing.T) {
	t.Cleanup(func() { envFlags, unsetFlags = nil, nil })

	envFlags, unsetFlags = []string{"NO_EQUALS_SIGN"}, nil
	_, err := buildOverrides(&config.Config{})
	assert.ErrorContains(t, err, "expected KEY=VALUE")

	envFlags, unsetFlags = nil, []string{"KEY=VALUE"}
	_, err = buildOverrides(&config.Config{})
	assert.ErrorContains(t, err, "expected a bare KEY")
}

func TestEntryFailure_RecordsConsistentHistory(t *testing.T) {
	event, err := entryFailure(space.ErrActive, "vim", 0)
	assert.Equal(t, history.EventDenied, event.Kind)
	assert.Equal(t, "vim", event.Program)
	assert.ErrorContains(t, err, "another playpen session is active")

	event, err = entryFailure(context.DeadlineExceeded, "vim", 5*time.Second)
	assert.Equal(t, history.EventDenied, event.Kind)
	assert.Contains(t, event.Message, "timed out after 5s")
	assert.ErrorContains(t, err, "timed out after 5s")

	boom := errors.New("mkdir failed")
	event, err = entryFailure(boom, "vim", 0)
	assert.Equal(t, history.EventError, event.Kind)
	assert.Equal(t, "mkdir failed", event.Message)
	assert.ErrorIs(t, err, boom)
}

func TestOpenHistory_DisabledReturnsNop(t *testing.T) {
	log.Initialize(false)
	defer log.Close()

	falseVal := false
	store := openHistory(&config.Config{HistoryEnabled: &falseVal})
	defer store.Close()

	store.Emit(history.Event{Kind: history.EventEntered})
	events, err := store.Query(history.QueryFilter{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, events)
}
