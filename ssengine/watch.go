package ssengine

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type watcher struct {
	fsw *fsnotify.Watcher
	wg  sync.WaitGroup
}

// Watch starts watching the template directories, invalidating cached
// templates as their files change. The loader's filesystem must be the OS
// filesystem. Call Close to stop watching.
func (e *Engine) Watch() error {
	if e.watching() {
		return nil
	}
	if _, ok := e.loader.Fs().(*afero.OsFs); !ok {
		return errors.New("ssengine: watching requires the OS filesystem")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range e.loader.Roots() {
		err = afero.Walk(e.loader.Fs(), root, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fsw.Add(path)
			}
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			fsw.Close()
			return err
		}
	}

	var w = &watcher{fsw: fsw}
	w.wg.Add(1)
	go e.watch(w)

	e.mu.Lock()
	e.watcher = w
	e.mu.Unlock()
	return nil
}

// Close stops watching. It is safe to call if Watch was not called.
func (e *Engine) Close() error {
	e.mu.Lock()
	var w = e.watcher
	e.watcher = nil
	e.mu.Unlock()
	if w == nil {
		return nil
	}
	var err = w.fsw.Close()
	w.wg.Wait()
	return err
}

func (e *Engine) watching() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.watcher != nil
}

func (e *Engine) watch(w *watcher) {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := e.loader.Fs().Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.fsw.Add(ev.Name); err != nil {
						Logger.Warn("cannot watch directory", zap.String("path", ev.Name), zap.Error(err))
					}
					continue
				}
			}
			e.invalidate(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			Logger.Error("template watcher", zap.Error(err))
		}
	}
}
