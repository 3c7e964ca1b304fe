package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/propengine/engine/assets/loaders"
	"github.com/spaghettifunk/propengine/engine/core"
	"github.com/spaghettifunk/propengine/engine/renderer/metadata"
)

var ErrClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// ReloadEvent reports that a watched asset changed on disk.
type ReloadEvent struct {
	Path    string
	Type    metadata.ResourceType
	Removed bool
}

// AssetManager indexes asset files and watches them for changes. The watcher
// runs on its own goroutine; consumers collect the resulting ReloadEvents on
// the render thread with Drain so that scene mutation stays single threaded.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	// files watched individually, their parent directory is what fsnotify sees
	files map[string]struct{}
	// directories watched together with everything beneath them
	trees []string

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	reloads  chan ReloadEvent
}

func NewAssetManager(queueSize int) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		files:    make(map[string]struct{}),
		fsnotify: fsWatch,
		reloads:  make(chan ReloadEvent, queueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})

	go am.start()
	return am, nil
}

// Watch starts watching each path. Directories are watched recursively; a
// file is watched through its parent directory so that editors replacing
// the file atomically are still noticed.
func (am *AssetManager) Watch(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, "watch %q", p)
		}
		fi, err := os.Stat(abs)
		if err != nil {
			return errors.Wrapf(err, "watch %q", p)
		}
		if fi.IsDir() {
			if err := am.addRecursive(abs); err != nil {
				return err
			}
			continue
		}
		if err := am.add(filepath.Dir(abs)); err != nil {
			return err
		}
		am.mutex.Lock()
		am.files[abs] = struct{}{}
		am.mutex.Unlock()
		am.handleFileEvent(abs)
	}
	return nil
}

func (am *AssetManager) add(name string) error {
	if am.isClosed {
		return ErrClosed
	}
	return errors.Wrapf(am.fsnotify.Add(name), "watch %q", name)
}

func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return ErrClosed
	}
	am.mutex.Lock()
	am.trees = append(am.trees, name)
	am.mutex.Unlock()
	return am.watchRecursive(name, false)
}

func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Reloads exposes the raw event queue.
func (am *AssetManager) Reloads() <-chan ReloadEvent {
	return am.reloads
}

// Drain empties the queue without blocking and returns the pending events,
// keeping only the latest event per path in the order paths first appeared.
func (am *AssetManager) Drain() []ReloadEvent {
	var (
		out   []ReloadEvent
		index = map[string]int{}
	)
	for {
		select {
		case e, ok := <-am.reloads:
			if !ok {
				return out
			}
			if i, seen := index[e.Path]; seen {
				out[i] = e
				continue
			}
			index[e.Path] = len(out)
			out = append(out, e)
		default:
			return out
		}
	}
}

// LoadImage loads an indexed or unindexed image through the registered loader.
func (am *AssetManager) LoadImage(path string, flipY bool) (*metadata.ImageResourceData, error) {
	loader, ok := am.loaders[metadata.ResourceTypeImage]
	if !ok {
		return nil, errors.Errorf("no loader registered for asset type: %s", metadata.ResourceTypeImage)
	}
	res, err := loader.Load(path, &metadata.ImageResourceParams{FlipY: flipY})
	if err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(path); err == nil {
		am.mutex.Lock()
		am.assets[abs] = AssetInfo{Path: abs, Type: metadata.ResourceTypeImage, LastLoaded: res.LoadedAt}
		am.mutex.Unlock()
	}
	return res.Data.(*metadata.ImageResourceData), nil
}

// Asset returns what the manager knows about an indexed file.
func (am *AssetManager) Asset(path string) (AssetInfo, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return AssetInfo{}, false
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[abs]
	return info, ok
}

func (am *AssetManager) Shutdown() {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	<-am.stopped
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err.Error())

		case <-am.done:
			am.fsnotify.Close()
			close(am.reloads)
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 && am.inTree(e.Name) {
			if err := am.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("asset watcher: %v", err)
			}
		}
		return
	}
	if !am.isWatched(e.Name) {
		return
	}
	assetType := determineAssetType(e.Name)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		am.handleFileEvent(e.Name)
		am.enqueue(ReloadEvent{Path: e.Name, Type: assetType})
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		am.removeAsset(e.Name)
		am.enqueue(ReloadEvent{Path: e.Name, Type: assetType, Removed: true})
	}
}

// enqueue never blocks the watcher; a full queue means the render thread is
// behind and will reload everything it has anyway.
func (am *AssetManager) enqueue(e ReloadEvent) {
	select {
	case am.reloads <- e:
	default:
		core.LogWarn("asset reload queue full, dropping event for %s", e.Path)
	}
}

func (am *AssetManager) isWatched(path string) bool {
	am.mutex.RLock()
	_, ok := am.files[path]
	am.mutex.RUnlock()
	return ok || am.inTree(path)
}

func (am *AssetManager) inTree(path string) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	for _, root := range am.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the asset files found on the way.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".toml":
		return metadata.ResourceTypeScene
	default:
		return metadata.ResourceTypeNone
	}
}
