package schema

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"

	"saleprobe/config"
	"saleprobe/interfaces"
	"saleprobe/model"
)

// Registry holds the contract artifacts of a build directory and a decoder
// over all of their events.
type Registry struct {
	cfg config.ArtifactsConfig

	mu        sync.RWMutex
	artifacts map[string]*model.Artifact
	decoder   *Decoder

	watcher *Watcher
}

var (
	_ interfaces.ABIParser      = (*Registry)(nil)
	_ interfaces.ArtifactSource = (*Registry)(nil)
)

func NewRegistry(cfg config.ArtifactsConfig) *Registry {
	return &Registry{
		cfg:       cfg,
		artifacts: make(map[string]*model.Artifact),
		decoder:   NewDecoder(),
	}
}

func isArtifactFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".json" || ext == ".abi"
}

func (r *Registry) LoadArtifacts() error {
	slog.Info("Reading artifacts from path", "dir", r.cfg.Dir)
	files, err := os.ReadDir(r.cfg.Dir)
	if err != nil {
		slog.Error("error reading dir", "name", r.cfg.Dir, "error", err)
		return err
	}
	for _, file := range files {
		if !file.IsDir() && isArtifactFile(file.Name()) {
			absPath := filepath.Join(r.cfg.Dir, file.Name())
			slog.Debug("Parsing...", "file", absPath)
			if err := r.Parse(absPath); err != nil {
				return err
			}
		}
	}
	r.ListEvents()
	return nil
}

func (r *Registry) ListEvents() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, r.decoder.Len())
	for _, ev := range r.decoder.events {
		names = append(names, ev.RawName)
	}
	sort.Strings(names)
	slog.Info("All events", "contracts", len(r.artifacts), "events", names)
}

func (r *Registry) Start() error {
	if err := r.LoadArtifacts(); err != nil {
		return err
	}
	if !r.cfg.Watch {
		return nil
	}
	w, err := NewWatcher(r.cfg.Dir, r)
	if err != nil {
		return err
	}
	r.watcher = w
	go w.Run()
	return nil
}

// Stop closes the artifact watcher and waits for its loop to exit.
func (r *Registry) Stop() error {
	if r.watcher == nil {
		return nil
	}
	err := r.watcher.Close()
	<-r.watcher.Done()
	return err
}

// Parse loads one artifact file, replacing an earlier artifact of the same
// contract name.
func (r *Registry) Parse(filename string) error {
	artifact, err := LoadArtifact(filename)
	if err != nil {
		slog.Error("Error reading artifact file", "file", filename, "error", err)
		return err
	}
	r.Add(artifact)
	return nil
}

func (r *Registry) Add(artifact *model.Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.artifacts[artifact.ContractName] = artifact
	r.decoder = NewDecoder(r.sortedABIs()...)
}

func (r *Registry) sortedABIs() []abi.ABI {
	names := make([]string, 0, len(r.artifacts))
	for name := range r.artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	abis := make([]abi.ABI, 0, len(names))
	for _, name := range names {
		abis = append(abis, r.artifacts[name].ABI)
	}
	return abis
}

func (r *Registry) Artifact(name string) (*model.Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	artifact, ok := r.artifacts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	}
	return artifact, nil
}

// Decoder returns a decoder over the named contracts, or over every loaded
// contract when no name is given.
func (r *Registry) Decoder(names ...string) (*Decoder, error) {
	if len(names) == 0 {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.decoder, nil
	}
	abis := make([]abi.ABI, 0, len(names))
	for _, name := range names {
		artifact, err := r.Artifact(name)
		if err != nil {
			return nil, err
		}
		abis = append(abis, artifact.ABI)
	}
	return NewDecoder(abis...), nil
}

func (r *Registry) Decode(log types.Log) (model.DecodedLog, error) {
	r.mu.RLock()
	decoder := r.decoder
	r.mu.RUnlock()
	return decoder.DecodeLog(&log)
}
