package cmd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/davidorman/scoremend/constants"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-audits score files as they change",
	Long:  `Watches a directory and re-audits recognized score files on change.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watch(args[0])
	},
}

func watch(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var mu sync.Mutex
	pending := make(map[string]bool)
	settle := debounce.New(constants.WatchSettleMillis * time.Millisecond)

	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]bool)
		mu.Unlock()

		sort.Strings(paths)
		for _, path := range paths {
			report, err := runAudit(path)
			if err != nil {
				zlog.Warn().Err(err).Str("path", path).Msg("audit failed")
				continue
			}
			zlog.Info().
				Str("path", path).
				Bool("modified", report.Modified).
				Int("corrections", len(report.Corrections)).
				Int("resolved_clefs", report.ResolvedClefs).
				Msg("audited")
		}
	}

	zlog.Info().Str("dir", dir).Msg("watching for score file changes")
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			mu.Lock()
			pending[ev.Name] = true
			mu.Unlock()
			settle(flush)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			zlog.Warn().Err(err).Msg("watcher error")
		}
	}
}
