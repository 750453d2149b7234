package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kastheco/playpen/config"
	"github.com/kastheco/playpen/history"
	sentrypkg "github.com/kastheco/playpen/internal/sentry"
	"github.com/kastheco/playpen/log"
	"github.com/kastheco/playpen/shell"
	"github.com/kastheco/playpen/space"
)

var (
	version     = "0.3.0"
	envFlags    []string
	unsetFlags  []string
	tryFlag     bool
	timeoutFlag time.Duration

	// exitStatus carries the child's exit code out of RunE to main.
	exitStatus int

	rootCmd = &cobra.Command{
		Use:   "playpen [flags] [--] [command [args...]]",
		Short: "playpen - run a command in a throwaway working directory with a restorable environment",
		Long: `playpen enters a process-wide scratch environment: a fresh temporary
working directory plus a checkpoint of every environment variable, runs
your command inside it, then restores everything and removes the
directory. Only one playpen session can be active per process.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if err := sentrypkg.Init(version, cfg.IsTelemetryEnabled()); err != nil {
				// Non-fatal: sentry failure should not prevent startup
				_ = err
			}
			defer sentrypkg.Flush()
			defer sentrypkg.RecoverPanic()

			log.Initialize(cfg.IsTelemetryEnabled())
			defer log.Close()

			program := cfg.DefaultProgram
			var progArgs []string
			if len(args) > 0 {
				program = args[0]
				progArgs = args[1:]
			}
			sentrypkg.SetContext(program, tryFlag)

			overrides, err := buildOverrides(cfg)
			if err != nil {
				return err
			}

			store := openHistory(cfg)
			defer store.Close()

			var sp *space.Space
			switch {
			case tryFlag:
				sp, err = space.TryEnterWithEnv(overrides...)
			case timeoutFlag > 0:
				ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
				defer cancel()
				sp, err = space.EnterContextWithEnv(ctx, overrides...)
			default:
				sp, err = space.EnterWithEnv(overrides...)
			}
			if err != nil {
				event, entryErr := entryFailure(err, program, timeoutFlag)
				store.Emit(event)
				return entryErr
			}
			store.Emit(history.Event{Kind: history.EventEntered, ScratchDir: sp.Dir(), Program: program})

			code, runErr := shell.NewRunner().Run(program, progArgs, sp.Dir())
			exitStatus = code

			exitErr := sp.Exit()
			if exitErr != nil {
				log.ErrorLog.Printf("playpen teardown: %v", exitErr)
				store.Emit(history.Event{
					Kind: history.EventError, ScratchDir: sp.Dir(),
					Program: program, Message: exitErr.Error(), Level: "error",
				})
			}
			store.Emit(history.Event{
				Kind: history.EventExited, ScratchDir: sp.Dir(),
				Program: program, ExitCode: code,
			})

			return errors.Join(runErr, exitErr)
		},
	}

	historyLimitFlag   int
	historyProgramFlag string

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List recent playpen sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()
			store := openHistory(cfg)
			defer store.Close()

			events, err := store.Query(history.QueryFilter{
				Program: historyProgramFlag,
				Limit:   historyLimitFlag,
			})
			if err != nil {
				return fmt.Errorf("failed to query history: %w", err)
			}
			if len(events) == 0 {
				fmt.Println("no recorded sessions")
				return nil
			}
			for _, e := range events {
				line := fmt.Sprintf("%s  %-8s %s",
					e.Timestamp.Local().Format(time.DateTime), e.Kind, e.Program)
				if e.Kind == history.EventExited {
					line += fmt.Sprintf(" (exit %d)", e.ExitCode)
				}
				if e.Message != "" {
					line += "  " + e.Message
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := config.LoadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			configJson, _ := json.MarshalIndent(cfg, "", "  ")

			fmt.Printf("Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), configJson)
			fmt.Printf("Log: %s\n", filepath.Join(os.TempDir(), log.LogFileName))

			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of playpen",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("playpen version %s\n", version)
		},
	}
)

// entryFailure translates a failed entry into the history event to
// record and the error to surface. Fail-fast refusal and a timed-out
// wait both count as denied sessions; anything else is an error.
func entryFailure(err error, program string, wait time.Duration) (history.Event, error) {
	switch {
	case errors.Is(err, space.ErrActive):
		return history.Event{Kind: history.EventDenied, Program: program, Level: "warn"},
			errors.New("another playpen session is active in this process")
	case errors.Is(err, context.DeadlineExceeded):
		msg := fmt.Sprintf("timed out after %s waiting for the active session", wait)
		return history.Event{Kind: history.EventDenied, Program: program, Message: msg, Level: "warn"},
			errors.New(msg)
	default:
		return history.Event{Kind: history.EventError, Program: program, Message: err.Error(), Level: "error"},
			fmt.Errorf("failed to enter playpen: %w", err)
	}
}

// buildOverrides merges the config env preset with the command-line
// flags, flags last so they win.
func buildOverrides(cfg *config.Config) ([]space.EnvVar, error) {
	var overrides []space.EnvVar
	for key, value := range cfg.Env.Set {
		overrides = append(overrides, space.Set(key, value))
	}
	for _, key := range cfg.Env.Unset {
		overrides = append(overrides, space.Unset(key))
	}
	for _, pair := range envFlags {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env value %q, expected KEY=VALUE", pair)
		}
		overrides = append(overrides, space.Set(key, value))
	}
	for _, key := range unsetFlags {
		if key == "" || strings.Contains(key, "=") {
			return nil, fmt.Errorf("invalid --unset value %q, expected a bare KEY", key)
		}
		overrides = append(overrides, space.Unset(key))
	}
	return overrides, nil
}

// openHistory returns the SQLite history store, or a no-op store when
// history is disabled or the database cannot be opened.
func openHistory(cfg *config.Config) history.Store {
	if !cfg.IsHistoryEnabled() {
		return history.NewNopStore()
	}
	configDir, err := config.GetConfigDir()
	if err != nil {
		log.WarningLog.Printf("failed to locate history db: %v", err)
		return history.NewNopStore()
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		log.WarningLog.Printf("failed to create config directory: %v", err)
		return history.NewNopStore()
	}
	store, err := history.NewSQLiteStore(filepath.Join(configDir, "history.db"))
	if err != nil {
		log.WarningLog.Printf("failed to open history db: %v", err)
		return history.NewNopStore()
	}
	return store
}

func init() {
	rootCmd.Flags().StringArrayVarP(&envFlags, "env", "e", nil,
		"Set an environment variable inside the playpen (KEY=VALUE, repeatable)")
	rootCmd.Flags().StringArrayVarP(&unsetFlags, "unset", "u", nil,
		"Unset an environment variable inside the playpen (repeatable)")
	rootCmd.Flags().BoolVar(&tryFlag, "try", false,
		"Fail immediately instead of waiting when another session is active")
	rootCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0,
		"Give up entering after this long (0 waits forever)")
	// Stop flag parsing at the first positional so the wrapped command's
	// own flags pass through untouched.
	rootCmd.Flags().SetInterspersed(false)

	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 20, "Maximum number of events to show")
	historyCmd.Flags().StringVarP(&historyProgramFlag, "program", "p", "", "Only show sessions for this program")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitStatus == 0 {
			exitStatus = 1
		}
	}
	os.Exit(exitStatus)
}
