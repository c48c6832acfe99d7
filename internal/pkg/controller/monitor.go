package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
)

// DetectConfigChanges watches the config directories and reports the path of
// every rewritten *.yaml file. The manager cache is not evicted; admitted
// devices keep the config they matched, the signal exists so an operator can
// see that a restart is needed to pick changes up.
func DetectConfigChanges(ctx context.Context, dirs []string) <-chan string {
	var change = make(chan string)

	go func() {
		defer close(change)
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Info(fmt.Sprintf("config watcher unavailable: %v", err), logger.Debug)
			return
		}

		go func() {
			<-ctx.Done()
			err := watcher.Close()
			if err != nil {
				log.Info(fmt.Sprintf("closing config watcher failed: %v", err), logger.Debug)
			}
		}()

		for _, dir := range dirs {
			err = watcher.Add(dir)
			if err != nil {
				log.Info(fmt.Sprintf("watching %q failed: %v", dir, err), logger.Debug)
			}
		}

		for event := range watcher.Events {
			if event.Op != fsnotify.Write {
				continue
			}
			if strings.HasSuffix(strings.ToLower(event.Name), ".yaml") {
				log.Info(fmt.Sprintf("config change detected: %s", event.Name), logger.Info)
				change <- event.Name
			}
		}
	}()

	return change
}
