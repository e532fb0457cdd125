// Package script runs Lua interaction behaviors. A Library holds compiled
// chunks keyed by file stem; a Behavior executes one of them on the
// simulation goroutine.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/zeusync/lightengine/internal/core/observability/log"
)

var ErrUnknownScript = errors.New("unknown script")

const extension = ".lua"

// Script is one compiled chunk. Version increases on every reload so running
// behaviors can pick up new code at their next reset.
type Script struct {
	Name    string
	Version uint64
	proto   *lua.FunctionProto
}

type Library struct {
	logger log.Log

	mu      sync.RWMutex
	scripts map[string]*Script
	version uint64
}

func NewLibrary(logger log.Log) *Library {
	return &Library{
		logger:  logger.With(log.Component("script")),
		scripts: make(map[string]*Script),
	}
}

// Compile parses source and stores it under name, replacing any previous
// version. A syntax error leaves the previous version in place.
func (l *Library) Compile(name, source string) error {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}

	l.mu.Lock()
	l.version++
	l.scripts[name] = &Script{Name: name, Version: l.version, proto: proto}
	l.mu.Unlock()
	return nil
}

// LoadFile compiles path under its file stem.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script %s: %w", path, err)
	}
	if err := l.Compile(nameOf(path), string(data)); err != nil {
		return err
	}
	l.logger.Debug("loaded lua script", log.String("file", path))
	return nil
}

// LoadDir compiles every .lua file in dir. A missing directory loads nothing.
func (l *Library) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != extension {
			continue
		}
		if err := l.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (l *Library) Remove(name string) {
	l.mu.Lock()
	delete(l.scripts, name)
	l.mu.Unlock()
}

func (l *Library) Get(name string) (*Script, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.scripts[name]
	return s, ok
}

func (l *Library) Names() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.scripts))
	for name := range l.scripts {
		names = append(names, name)
	}
	l.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Watch reloads scripts in dir as they change until ctx is done. Broken
// edits are logged and the last good version stays active.
func (l *Library) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	l.logger.Info("watching scripts", log.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			l.apply(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("script watcher error", log.Error(err))
		}
	}
}

func (l *Library) apply(ev fsnotify.Event) {
	if filepath.Ext(ev.Name) != extension {
		return
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		l.Remove(nameOf(ev.Name))
		l.logger.Info("script removed", log.String("file", ev.Name))
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		if err := l.LoadFile(ev.Name); err != nil {
			l.logger.Warn("script reload failed", log.String("file", ev.Name), log.Error(err))
			return
		}
		l.logger.Info("script reloaded", log.String("file", ev.Name))
	}
}

func nameOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), extension)
}
