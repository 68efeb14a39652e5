package assets

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/lume/engine/assets/loaders"
	"github.com/spaghettifunk/lume/engine/core"
)

type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	ResourceTypeImage
	ResourceTypeShader
	ResourceTypeBitmapFont
)

type AssetInfo struct {
	Path       string
	Type       ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the asset directory and watches it for changes.
// Modified files land on the Reloads channel so the game can hot-reload
// them; loading itself is pull-based through the typed Load methods.
type AssetManager struct {
	root   string
	assets map[string]AssetInfo

	images loaders.ImageLoader
	shader loaders.ShaderLoader
	fonts  loaders.BitmapFontLoader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool

	// Reloads receives asset paths whose files changed on disk.
	Reloads chan string
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		Reloads:  make(chan string, 64),
	}, nil
}

// Initialize indexes assetsDir recursively and starts the watcher.
func (am *AssetManager) Initialize(assetsDir string) error {
	am.root = assetsDir

	if err := am.watchRecursive(assetsDir); err != nil {
		return err
	}
	am.started = true
	go am.start()

	core.LogInfo("Asset manager watching %s (%d assets indexed).", assetsDir, am.Count())
	return nil
}

func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true

	// Without a running watch goroutine nobody listens on done, so the
	// watcher has to be torn down here.
	if !am.started {
		close(am.Reloads)
		return am.fsnotify.Close()
	}
	close(am.done)
	return nil
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Lookup returns the index entry for a path relative to the asset root.
func (am *AssetManager) Lookup(relPath string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[filepath.Join(am.root, relPath)]
	return info, ok
}

// LoadImage decodes an image asset by path relative to the asset root.
func (am *AssetManager) LoadImage(relPath string) (*loaders.ImageData, error) {
	path, err := am.resolve(relPath, ResourceTypeImage)
	if err != nil {
		return nil, err
	}
	return am.images.Load(path)
}

// LoadShader reads a vertex/fragment source pair by base path relative
// to the asset root (no extension).
func (am *AssetManager) LoadShader(relBasePath string) (*loaders.ShaderData, error) {
	base := filepath.Join(am.root, relBasePath)
	return am.shader.Load(base)
}

// LoadBitmapFont parses a .fnt descriptor and its atlas image by path
// relative to the asset root.
func (am *AssetManager) LoadBitmapFont(relPath string) (*loaders.BitmapFontData, error) {
	path, err := am.resolve(relPath, ResourceTypeBitmapFont)
	if err != nil {
		return nil, err
	}
	return am.fonts.Load(path)
}

func (am *AssetManager) resolve(relPath string, want ResourceType) (string, error) {
	path := filepath.Join(am.root, relPath)

	am.mutex.Lock()
	defer am.mutex.Unlock()

	info, ok := am.assets[path]
	if !ok {
		return "", core.ResourceErrorf("asset not found: %s", path)
	}
	if info.Type != want {
		return "", core.ResourceErrorf("asset %s has type %d, wanted %d", path, info.Type, want)
	}
	info.LastLoaded = time.Now()
	am.assets[path] = info
	return path, nil
}

func (am *AssetManager) start() {
	for {
		select {
		case e := <-am.fsnotify.Events:
			if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.indexFile(e.Name) {
					select {
					case am.Reloads <- e.Name:
					default:
						// Consumer is behind; hot-reload is best effort.
					}
				}
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.fsnotify.Remove(e.Name)
			}

		case err := <-am.fsnotify.Errors:
			if err != nil {
				core.LogError(err.Error())
			}

		case <-am.done:
			am.fsnotify.Close()
			close(am.Reloads)
			return
		}
	}
}

// watchRecursive adds the directory and everything under it to the watch
// list, indexing the files it passes.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.indexFile(walkPath)
		return nil
	})
}

func (am *AssetManager) indexFile(path string) bool {
	assetType := determineAssetType(path)
	if assetType == ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	return true
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, path)
}

func determineAssetType(path string) ResourceType {
	switch filepath.Ext(path) {
	case ".png", ".jpg", ".jpeg", ".bmp":
		return ResourceTypeImage
	case ".vert", ".frag":
		return ResourceTypeShader
	case ".fnt":
		return ResourceTypeBitmapFont
	default:
		return ResourceTypeNone
	}
}
