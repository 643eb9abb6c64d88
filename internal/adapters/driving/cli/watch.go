package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docsage-ai/docsage-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest changed files",
	Long: `Watches a directory for new or modified Markdown and text files and
ingests them into the knowledge store as they change. Runs until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// resolveEventPath makes an fsnotify event path absolute. Events carry
// the watch target's form, so a relative watch directory yields relative
// names that the ingestor would treat as literal text instead of files.
func resolveEventPath(name string) string {
	abs, err := filepath.Abs(name)
	if err != nil {
		return name
	}
	return abs
}

// watchable reports whether a file should be ingested on change.
func watchable(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".markdown":
		return true
	}
	return false
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch target: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cmd.Printf("Watching %s (ctrl-c to stop)\n", dir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !watchable(event.Name) {
				continue
			}

			path := resolveEventPath(event.Name)
			logger.Debug("Change detected: %s", path)

			report, err := runtime.AddKnowledge(cmd.Context(), []string{path})
			if err != nil {
				logger.Error("ingesting %s: %v", path, err)
				continue
			}
			if report.AllSucceeded() {
				cmd.Printf("Ingested %s (%d documents)\n", path, len(report.Succeeded))
			} else {
				cmd.Printf("Failed to ingest %s: %v\n", path, report.Failed[0].Err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error: %v", err)

		case <-sigCh:
			cmd.Println("\nStopping.")
			return nil

		case <-cmd.Context().Done():
			return cmd.Context().Err()
		}
	}
}
