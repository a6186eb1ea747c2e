package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"pomotimer/internal/menubar"
)

func newTrayCmd(opts *options) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "tray",
		Short: "Run the timer from the system tray",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.pattern, "pattern", "p", "", "breathing pattern for breaks")
	cmd.Flags().BoolVar(&flags.noBreathing, "no-breathing", false, "disable the breathing exercise")

	return cmd
}

func runTray(ctx context.Context, opts *options, flags *runFlags) error {
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

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startMetrics(ctx, cfg)

	mb := menubar.NewSystrayMenuBar(ctrl)

	loopErr := make(chan error, 1)
	go func() {
		err := ctrl.Run(ctx)
		mb.Quit()
		loopErr <- err
	}()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mb.UpdateStatus(ctrl.Status())
			}
		}
	}()

	// systray needs the main goroutine; Run returns once the tray exits
	mb.Run(cancel)

	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("session loop failed: %w", err)
	}

	slog.Info("Tray session finished", "sessions", ctrl.Status().SessionCount)
	return nil
}
