package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Simulate bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Recompile sources on change",
		Long: `Watch a directory for changes to .squint files and recompile each
changed file as it is written. Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Simulate, "simulate", false, "Run the simulator after each compile")

	return cmd
}

func runWatch(cmd *cobra.Command, dir string, opts *WatchOptions) error {
	cfg := getConfig()
	logger := getLogger(cmd)

	eng, err := createEngine(cmd, cfg, opts.Simulate, "")
	if err != nil {
		return err
	}
	defer eng.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for .squint changes (Ctrl+C to stop)\n", dir)

	// Debounce timer keyed by path so rapid editor saves compile once
	timers := map[string]*time.Timer{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".squint" {
				continue
			}

			path := event.Name
			if t, present := timers[path]; present {
				t.Stop()
			}
			timers[path] = time.AfterFunc(100*time.Millisecond, func() {
				fr, err := eng.CompileFile(ctx, path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", path, err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "compiled %s (%d artifacts)\n", path, len(fr.Artifacts))
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
