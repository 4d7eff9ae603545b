package layouts

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the bursts of write events editors and atomic
// saves produce for a single file change.
const debounceDelay = 200 * time.Millisecond

// Watch starts watching the store's directory and hot-reloads layouts as
// their files change. New .kcm files are picked up, removed files drop out
// of the store. Close stops the watcher.
func (s *Store) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(s.dir); err != nil {
		_ = w.Close()
		return err
	}
	s.watcher = w
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.watchLoop()
	return nil
}

// Close stops the watcher, if one was started.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	s.watcher = nil
	return err
}

func (s *Store) watchLoop() {
	defer s.wg.Done()

	var mu sync.Mutex
	pending := make(map[string]*time.Timer)

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[path]; ok {
			t.Reset(debounceDelay)
			return
		}
		pending[path] = time.AfterFunc(debounceDelay, func() {
			mu.Lock()
			delete(pending, path)
			mu.Unlock()
			select {
			case <-s.done:
				return
			default:
			}
			if err := s.load(path); err != nil {
				s.logger.Warn("layout reload failed", "file", filepath.Base(path), "error", err)
				return
			}
			s.logger.Info("layout reloaded", "name", nameForFile(path))
		})
	}

	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, ".kcm") {
				continue
			}
			switch {
			case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
				schedule(ev.Name)
			case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
				s.remove(nameForFile(ev.Name))
				s.logger.Info("layout removed", "name", nameForFile(ev.Name))
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("layout watcher error", "error", err)
		}
	}
}
