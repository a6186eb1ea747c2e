package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"pomotimer/internal/config"
	"pomotimer/internal/instance"
	"pomotimer/internal/models"
	"pomotimer/internal/observability"
	"pomotimer/internal/session"
	"pomotimer/internal/tracker"
)

type runFlags struct {
	pattern        string
	noBreathing    bool
	statusInterval time.Duration
}

func newRunCmd(opts *options) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive session in the terminal",
		Long: `Start an interactive session in the terminal.

Type a key and press enter to control the session. An empty line acts as space.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.pattern, "pattern", "p", "", "breathing pattern for breaks (see 'pomotimer patterns')")
	cmd.Flags().BoolVar(&flags.noBreathing, "no-breathing", false, "disable the breathing exercise")
	cmd.Flags().DurationVar(&flags.statusInterval, "status-interval", time.Second, "how often the status line is printed")

	return cmd
}

func runSession(ctx context.Context, in io.Reader, out io.Writer, opts *options, flags *runFlags) error {
	out = &syncWriter{w: out}

	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}

	lock, err := acquireLock(cfg)
	if err != nil {
		return err
	}
	defer lock.Release()

	ctrl, err := buildController(cfg, flags)
	if err != nil {
		return err
	}
	ctrl.AddEventCallback(announce(out))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startMetrics(ctx, cfg)

	printKeyHelp(out)

	go func() {
		readKeys(in, ctrl)
		cancel()
	}()
	go printStatus(ctx, out, ctrl, flags.statusInterval)

	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("session loop failed: %w", err)
	}

	fmt.Fprintf(out, "\nCompleted %d focus sessions\n", ctrl.Status().SessionCount)
	return nil
}

// acquireLock takes the single instance lock from the configured directory
func acquireLock(cfg *models.Config) (*instance.Lock, error) {
	lockDir, err := config.ExpandPath(cfg.Instance.LockDir)
	if err != nil {
		return nil, err
	}

	lock, err := instance.NewLock(lockDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create instance lock: %w", err)
	}

	if err := lock.TryLock(); err != nil {
		return nil, fmt.Errorf("failed to acquire instance lock: %w", err)
	}

	slog.Debug("Instance lock acquired", "path", lock.GetLockPath())
	return lock, nil
}

// buildController creates a controller from config plus command line overrides
func buildController(cfg *models.Config, flags *runFlags) (*session.Controller, error) {
	settings := session.SettingsFromConfig(cfg)

	if flags != nil {
		if flags.pattern != "" {
			pattern, err := tracker.ParsePattern(flags.pattern)
			if err != nil {
				return nil, err
			}
			settings.BreathingPattern = pattern
		}
		if flags.noBreathing {
			settings.BreathingEnabled = false
		}
	}

	ctrl := session.NewController(settings, session.WithLogger(slog.Default()))
	ctrl.AddEventCallback(observability.RecordEvent)
	return ctrl, nil
}

func startMetrics(ctx context.Context, cfg *models.Config) {
	if !cfg.Metrics.Enabled {
		return
	}

	go func() {
		if err := observability.Serve(ctx, cfg.Metrics.ListenAddr); err != nil {
			slog.Error("Metrics server failed", "addr", cfg.Metrics.ListenAddr, "error", err)
		}
	}()
}

type dispatcher interface {
	Dispatch(key rune) bool
}

// readKeys feeds every character of each input line to d. An empty line is a space.
// It returns when input ends or a key asks to quit.
func readKeys(r io.Reader, d dispatcher) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			line = " "
		}
		for _, key := range line {
			if !d.Dispatch(key) {
				return
			}
		}
	}
}

func printStatus(ctx context.Context, out io.Writer, ctrl *session.Controller, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprintln(out, ctrl.Status().Line())
		}
	}
}

func printKeyHelp(out io.Writer) {
	fmt.Fprintln(out, "Keys:")
	for _, k := range session.KeyHelp {
		fmt.Fprintf(out, "  %-6s %s\n", k.Key, k.Action)
	}
}

// announce prints a short notice for each phase change
func announce(out io.Writer) session.EventCallback {
	return func(e session.Event) {
		switch e.Type {
		case session.EventFocusCompleted:
			fmt.Fprintf(out, "🍅 Focus session %d complete! Press space to start your break\n", e.Count)
		case session.EventBreakStarted:
			fmt.Fprintln(out, "☕ Short break. Pick an activity with 1-4 and press space")
		case session.EventLongBreakStarted:
			fmt.Fprintln(out, "🌴 Long break. Pick an activity with 1-4 and press space")
		case session.EventBreakCompleted:
			fmt.Fprintln(out, "⏰ Break over! Press space to continue")
		case session.EventBreathingCompleted:
			fmt.Fprintf(out, "🫁 Breathing exercise complete (%s)\n", e.Pattern.Name())
		}
	}
}

// syncWriter serializes writes from the status printer, event callbacks and key reader
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
