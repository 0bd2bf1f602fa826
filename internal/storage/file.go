package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/SahinShazi/HealthSync/internal"
)

// FilePreferences keeps preferences in memory and writes them to a JSON file
// shortly after each change.
type FilePreferences struct {
	prefs     map[string]internal.Preference
	mu        sync.RWMutex
	file      string
	saveChan  chan struct{}
	shutdown  chan struct{}
	done      chan struct{}
	saveDelay time.Duration
	closeOnce sync.Once
	logger    internal.Logger
}

func NewFilePreferences(file string, logger internal.Logger) (*FilePreferences, error) {
	return newFilePreferences(file, 500*time.Millisecond, logger)
}

func newFilePreferences(file string, delay time.Duration, logger internal.Logger) (*FilePreferences, error) {
	if logger == nil {
		logger = internal.NopLogger()
	}
	s := &FilePreferences{
		prefs:     make(map[string]internal.Preference),
		file:      file,
		saveChan:  make(chan struct{}, 1),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		saveDelay: delay,
		logger:    logger,
	}

	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load preferences: %v", err)
		return nil, err
	}

	go s.saveWorker()
	return s, nil
}

func (s *FilePreferences) load() error {
	file, err := os.Open(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var prefs []internal.Preference
	if err := json.NewDecoder(file).Decode(&prefs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range prefs {
		s.prefs[p.Key] = p
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FilePreferences) save() error {
	s.mu.RLock()
	prefs := make([]internal.Preference, 0, len(s.prefs))
	for _, p := range s.prefs {
		prefs = append(prefs, p)
	}
	s.mu.RUnlock()

	sort.Slice(prefs, func(i, j int) bool { return prefs[i].Key < prefs[j].Key })
	return atomicWriteFileJSON(s.file, prefs)
}

// saveWorker coalesces bursts of changes into one write.
func (s *FilePreferences) saveWorker() {
	defer close(s.done)
	timer := time.NewTimer(s.saveDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving preferences: %v", err)
			}
		case <-s.shutdown:
			return
		}
	}
}

func (s *FilePreferences) markDirty() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

// Close stops the save worker and writes pending changes synchronously.
func (s *FilePreferences) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdown)
		<-s.done
		err = s.save()
	})
	return err
}

func (s *FilePreferences) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[key]
	return p.Value, ok, nil
}

func (s *FilePreferences) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.prefs[key] = internal.Preference{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	s.mu.Unlock()
	s.markDirty()
	return nil
}

func (s *FilePreferences) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.prefs, key)
	s.mu.Unlock()
	s.markDirty()
	return nil
}

var _ PreferenceStore = (*FilePreferences)(nil)
