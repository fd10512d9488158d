// Package ingest discovers dossier payloads in an inbox directory: either
// single *.json payload files or subdirectories holding per-document *.txt
// files.
package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kodjo-amani/dossier-check/constants"
)

type WatchConfig struct {
	Root        string // inbox directory, watched recursively
	AllowedExts map[string]struct{}
	InitialScan bool          // if true, walk the root and emit existing payloads
	Debounce    time.Duration // coalesce rapid update/rename bursts
}

// StartWatcher emits dossier payload paths as they appear under the inbox.
// A *.txt event is reported as its parent directory, so a dossier dropped
// file by file surfaces once per burst, not once per document.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if cfg.Root == "" {
		return nil, nil, errors.New("no inbox root provided")
	}
	if cfg.AllowedExts == nil {
		cfg.AllowedExts = constants.AllowedExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	// Walk the root: watch every directory, optionally emit existing payloads
	addErr := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if cfg.InitialScan {
			if p, ok := payloadPath(cfg.Root, path, cfg.AllowedExts); ok {
				select {
				case evCh <- p:
				default:
				}
			}
		}
		return nil
	})
	if addErr != nil {
		logger.Error("failed to walk inbox root", "root", cfg.Root, "error", addErr)
		_ = w.Close()
		return nil, nil, addErr
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() { _ = w.Close() }()

		var timer *time.Timer
		pending := map[string]struct{}{}

		sendPending := func() {
			for p := range pending {
				select {
				case evCh <- p:
				default:
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e := <-w.Events:
				if e.Op&fsnotify.Create == fsnotify.Create {
					// a new directory may be a dossier being dropped: watch it
					tryAddDir(w, e.Name)
				}

				if (e.Op & (fsnotify.Create | fsnotify.Write | fsnotify.Rename)) == 0 {
					continue
				}
				if p, ok := payloadPath(cfg.Root, e.Name, cfg.AllowedExts); ok {
					pending[p] = struct{}{}
					if cfg.Debounce > 0 {
						if timer != nil {
							timer.Stop()
						}
						timer = time.AfterFunc(cfg.Debounce, sendPending)
					} else {
						sendPending()
					}
				}
			case err := <-w.Errors:
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// payloadPath maps a file event to the dossier payload it belongs to: a
// *.json file is a payload itself, a *.txt file names its parent directory.
func payloadPath(root, path string, exts map[string]struct{}) (string, bool) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := exts[ext]; !ok {
		return "", false
	}
	if ext == "txt" {
		dir := filepath.Dir(path)
		if filepath.Clean(dir) == filepath.Clean(root) {
			// loose txt at the inbox root is not a dossier
			return "", false
		}
		return dir, true
	}
	return path, true
}

func tryAddDir(w *fsnotify.Watcher, path string) {
	// best-effort: adding a plain file fails and that is fine
	_ = w.Add(path)
}
