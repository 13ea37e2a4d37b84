package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/eddalmond/pulumi-tech-holiday/internal/stackconf"
)

// newWatchCmd creates the "watch" subcommand for re-previewing on config changes.
func newWatchCmd() *cobra.Command {
	var (
		configFile   string
		debounce     time.Duration
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-preview on stack config changes",
		Long: `Watch monitors the stack config file and re-runs preview whenever it
changes.

The watch command:
- Monitors the config file's directory
- Re-runs the configured stack program on each change
- Debounces rapid changes to avoid excessive reruns

Examples:
    tech-holiday watch
    tech-holiday watch --config other-stack.yaml --debounce 1s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(configFile, debounce, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", stackconf.DefaultFile, "Stack config file")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json, or yaml")

	return cmd
}

// runWatch monitors the config file and re-previews on changes.
func runWatch(configFile string, debounce time.Duration, outputFormat string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	absConfig, err := filepath.Abs(configFile)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", configFile, err)
	}

	// Watch the directory rather than the file: editors replace files on
	// save, which drops a watch on the file itself.
	dir := filepath.Dir(absConfig)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	fmt.Printf("Watching: %s\n", absConfig)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Running initial preview...")
	rerunPreview(configFile, outputFormat)

	var debounceTimer *time.Timer
	rerunChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != absConfig {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce: reset timer on each change
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case rerunChan <- struct{}{}:
				default:
				}
			})

		case <-rerunChan:
			fmt.Printf("\n[%s] Change detected, re-running preview...\n", time.Now().Format("15:04:05"))
			rerunPreview(configFile, outputFormat)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

func rerunPreview(configFile, outputFormat string) {
	if err := runPreview(configFile, outputFormat, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Preview error: %v\n", err)
	}
}
