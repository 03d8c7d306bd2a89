package notify

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is spec.md §5's default quiet period before a batch of
// accumulated filesystem changes fires one index pass.
const DefaultDebounce = 2 * time.Second

// skippedDirs are never recursed into or watched.
var skippedDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
}

// fileWatcher implements FileWatcher over fsnotify, recursively watching a
// set of root directories and filtering events to a fixed extension set.
type fileWatcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	debounce   time.Duration
	callback   func(changes []Change)

	ctx    context.Context
	cancel context.CancelFunc
	doneCh chan struct{}

	pausedMu sync.RWMutex
	paused   bool

	accMu       sync.Mutex
	accumulated map[string]bool // path -> removed

	timerMu sync.Mutex
	timer   *time.Timer

	stopOnce sync.Once

	maxDirectories  int
	maxDepth        int
	watchedDirCount int
	countMu         sync.Mutex
}

// NewFileWatcher builds a file watcher rooted at dirs, recursively adding
// every subdirectory up to a depth and count limit so a misconfigured root
// (a symlink cycle, a vendored dependency tree) can't exhaust inotify
// watches. extensions are bare, no leading dot (e.g. "go", "py").
func NewFileWatcher(dirs []string, extensions []string, debounce time.Duration) (FileWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	extMap := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extMap["."+ext] = true
	}

	fw := &fileWatcher{
		watcher:        watcher,
		extensions:     extMap,
		debounce:       debounce,
		accumulated:    make(map[string]bool),
		doneCh:         make(chan struct{}),
		maxDirectories: 1000,
		maxDepth:       10,
	}

	for _, dir := range dirs {
		if err := fw.addDirectoriesRecursively(dir, 0); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return fw, nil
}

func (fw *fileWatcher) Start(ctx context.Context, callback func(changes []Change)) error {
	if callback == nil {
		return nil
	}
	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)
	go fw.watch()
	return nil
}

func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.fireIfAccumulated()
	}
}

func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name, 0); err != nil {
						log.Printf("warning: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accMu.Lock()
			fw.accumulated[event.Name] = event.Op&fsnotify.Remove != 0 || event.Op&fsnotify.Rename != 0
			fw.accMu.Unlock()

			fw.resetTimer(fireCh)

		case <-fireCh:
			fw.fireIfNotPaused()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("file watcher error: %v", err)
		}
	}
}

func (fw *fileWatcher) fireIfNotPaused() {
	fw.pausedMu.RLock()
	paused := fw.paused
	fw.pausedMu.RUnlock()
	if paused {
		return
	}
	fw.fireIfAccumulated()
}

func (fw *fileWatcher) fireIfAccumulated() {
	fw.accMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accMu.Unlock()
		return
	}
	changes := make([]Change, 0, len(fw.accumulated))
	for path, removed := range fw.accumulated {
		changes = append(changes, Change{Path: path, Removed: removed})
	}
	fw.accumulated = make(map[string]bool)
	fw.accMu.Unlock()

	if fw.callback != nil {
		fw.callback(changes)
	}
}

func (fw *fileWatcher) resetTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.timer != nil {
		if !fw.timer.Stop() {
			select {
			case <-fw.timer.C:
			default:
			}
		}
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
}

func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return fw.extensions[filepath.Ext(event.Name)]
}

func (fw *fileWatcher) addDirectoriesRecursively(rootPath string, depth int) error {
	if depth > fw.maxDepth {
		return fmt.Errorf("max depth %d exceeded at %s", fw.maxDepth, rootPath)
	}
	if skippedDirs[filepath.Base(rootPath)] {
		return nil
	}

	fw.countMu.Lock()
	if fw.watchedDirCount >= fw.maxDirectories {
		count := fw.watchedDirCount
		fw.countMu.Unlock()
		return fmt.Errorf("directory limit reached: %d directories already watched (max %d)", count, fw.maxDirectories)
	}
	fw.countMu.Unlock()

	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return err
	}

	if err := fw.watcher.Add(rootPath); err != nil {
		return fmt.Errorf("watch directory %s: %w", rootPath, err)
	}
	fw.countMu.Lock()
	fw.watchedDirCount++
	fw.countMu.Unlock()

	for _, entry := range entries {
		if !entry.IsDir() || skippedDirs[entry.Name()] {
			continue
		}
		subPath := filepath.Join(rootPath, entry.Name())
		if err := fw.addDirectoriesRecursively(subPath, depth+1); err != nil {
			log.Printf("warning: %v", err)
		}
	}
	return nil
}
