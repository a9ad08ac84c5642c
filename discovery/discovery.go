// Package discovery turns a directory of plugin declaration files into
// registration batches. Each *.yaml/*.yml file in the directory declares
// one plugin:
//
//	alias: pdf-parser
//	path: builtin/pdf
//	config:
//	  maxPages: 500
//
// Scan reads the directory once; Watch re-scans on filesystem changes so
// hosts can pick up added or edited declarations without restarting.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/vectorhive/core/registry"
)

// Scan reads every declaration file in dir, sorted by file name so batch
// order (and therefore service start order) is deterministic.
func Scan(dir string) ([]registry.Registration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discovery: read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	regs := make([]registry.Registration, 0, len(files))
	for _, name := range files {
		reg, err := loadDeclaration(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, nil
}

func loadDeclaration(path string) (*registry.Registration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("discovery: read %s: %w", path, err)
	}
	var reg registry.Registration
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("discovery: parse %s: %w", path, err)
	}
	if reg.Alias == "" {
		return nil, fmt.Errorf("discovery: %s: alias is required", path)
	}
	if reg.Path == "" {
		return nil, fmt.Errorf("discovery: %s: path is required", path)
	}
	return &reg, nil
}

// Watch emits the full declaration set on every relevant filesystem change
// in dir, after an initial emission of the current state. The channel is
// closed when ctx is done. Scan failures mid-watch are logged and skipped;
// the previous state stays in effect.
func Watch(ctx context.Context, dir string, logger *slog.Logger) (<-chan []registry.Registration, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("discovery: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("discovery: watch %s: %w", dir, err)
	}

	initial, err := Scan(dir)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan []registry.Registration, 1)
	out <- initial

	go func() {
		defer close(out)
		defer watcher.Close()

		// Editors produce bursts of events per save; coalesce them.
		var pending <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !declarationFile(ev.Name) {
					continue
				}
				pending = time.After(250 * time.Millisecond)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("declaration watch error", "dir", dir, "error", err)
			case <-pending:
				pending = nil
				regs, err := Scan(dir)
				if err != nil {
					logger.Warn("declaration re-scan failed", "dir", dir, "error", err)
					continue
				}
				select {
				case out <- regs:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func declarationFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
