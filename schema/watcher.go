package schema

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"saleprobe/interfaces"
)

// Watcher re-parses artifacts that are created or rewritten in a directory,
// so a running process picks up freshly compiled contracts.
type Watcher struct {
	watcher *fsnotify.Watcher
	parser  interfaces.ABIParser
	done    chan struct{}
}

func NewWatcher(dir string, parser interfaces.ABIParser) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("error creating artifact directory watcher", "error", err)
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		slog.Error("error adding artifact directory to watcher", "dir", dir, "error", err)
		_ = watcher.Close()
		return nil, err
	}
	return &Watcher{watcher: watcher, parser: parser, done: make(chan struct{})}, nil
}

func (w *Watcher) Run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				slog.Debug("exiting artifact directory watcher")
				return
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				if !isArtifactFile(event.Name) {
					continue
				}
				slog.Info("New artifact detected", "name", event.Name)
				if err := w.parser.Parse(event.Name); err != nil {
					slog.Error("Error parsing new artifact", "file name", event.Name, "error", err)
					continue
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Done is closed once Run has returned.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}
