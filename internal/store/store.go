package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/models"
)

const (
	prizesFile  = "prizes.json"
	configFile  = "config.json"
	historyFile = "history.json"
)

// Store owns the three canonical JSON documents on local disk. Every
// read-or-write sequence runs under one mutex: two writers must never
// interleave temp-file creation and rename, and append sequences must
// see a stable document.
//
// Loads are self-healing. A missing file is bootstrapped from the
// default; a corrupt file is moved aside to a timestamped backup and
// reset. Callers never see a decode failure.
type Store struct {
	mu  sync.Mutex
	dir string
	log *logrus.Entry
}

func New(dir string, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		dir: dir,
		log: log.WithField("component", "store"),
	}, nil
}

func (s *Store) LoadPrizes() []models.Prize {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPrizesLocked()
}

// SavePrizes snapshots the previous prize file to a backup before the
// atomic write; prize data is the one document an operator cannot
// reconstruct after a bad admin edit.
func (s *Store) SavePrizes(prizes []models.Prize) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(prizesFile, prizes, true)
}

func (s *Store) LoadConfig() models.WheelConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadConfigLocked()
}

func (s *Store) SaveConfig(cfg models.WheelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(configFile, cfg, false)
}

func (s *Store) LoadHistory() []models.SpinRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistoryLocked()
}

// AppendHistory prepends a record and persists, holding the lock for
// the whole load-prepend-truncate-save sequence so concurrent admin
// edits can never drop a spin record. It returns the persisted history.
func (s *Store) AppendHistory(rec models.SpinRecord) ([]models.SpinRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.loadHistoryLocked()
	history = append([]models.SpinRecord{rec}, history...)
	if len(history) > models.HistoryRetention {
		history = history[:models.HistoryRetention]
	}
	if err := s.writeLocked(historyFile, history, false); err != nil {
		return nil, err
	}
	return history, nil
}

// ClearHistory backs up the current history, then empties it.
func (s *Store) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if history := s.loadHistoryLocked(); len(history) > 0 {
		if backup, err := s.backupLocked(historyFile); err == nil {
			s.log.WithField("backup", backup).Info("History backed up before clear")
		}
	}
	return s.writeLocked(historyFile, []models.SpinRecord{}, false)
}

func (s *Store) loadPrizesLocked() []models.Prize {
	def := models.DefaultPrizes()
	raw, ok := s.readOrBootstrapLocked(prizesFile, def)
	if !ok {
		return def
	}
	// Unmarshalling into a slice also rejects a mapping-shaped file,
	// which counts as corruption for the prize document.
	var prizes []models.Prize
	if err := json.Unmarshal(raw, &prizes); err != nil {
		s.recoverCorruptLocked(prizesFile, def, err)
		return def
	}
	return prizes
}

func (s *Store) loadConfigLocked() models.WheelConfig {
	def := models.DefaultConfig()
	raw, ok := s.readOrBootstrapLocked(configFile, def)
	if !ok {
		return def
	}
	var cfg models.WheelConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		s.recoverCorruptLocked(configFile, def, err)
		return def
	}
	return cfg
}

func (s *Store) loadHistoryLocked() []models.SpinRecord {
	def := []models.SpinRecord{}
	raw, ok := s.readOrBootstrapLocked(historyFile, def)
	if !ok {
		return def
	}
	var history []models.SpinRecord
	if err := json.Unmarshal(raw, &history); err != nil {
		s.recoverCorruptLocked(historyFile, def, err)
		return def
	}
	return history
}

// readOrBootstrapLocked returns the raw document, bootstrapping the
// default when the file does not exist yet. The second return is false
// when the caller should just use the default.
func (s *Store) readOrBootstrapLocked(name string, def any) ([]byte, bool) {
	path := s.path(name)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if werr := s.writeLocked(name, def, false); werr != nil {
			s.log.WithError(werr).WithField("file", name).Error("Failed to bootstrap document")
		}
		return nil, false
	}
	if err != nil {
		s.log.WithError(err).WithField("file", name).Error("Read failed, serving default")
		return nil, false
	}
	return raw, true
}

// recoverCorruptLocked moves the bad file aside and resets the
// canonical document. Recovery is not an error to the caller, but it
// must be observable.
func (s *Store) recoverCorruptLocked(name string, def any, cause error) {
	entry := s.log.WithField("file", name).WithError(cause)
	backup, err := s.backupLocked(name)
	if err != nil {
		entry.Error("Corrupt document detected, backup failed")
	} else {
		entry.WithField("backup", backup).Warn("Corrupt document backed up, resetting to default")
	}
	if err := s.writeLocked(name, def, false); err != nil {
		entry.WithError(err).Error("Failed to reset corrupt document")
	}
}

// writeLocked validates serializability, optionally snapshots the
// previous version, then writes temp-file-and-rename so a crash
// mid-write never leaves a half-written canonical file.
func (s *Store) writeLocked(name string, v any, backup bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := s.path(name)
	if backup {
		if _, err := os.Stat(path); err == nil {
			if _, berr := s.backupLocked(name); berr != nil {
				s.log.WithError(berr).WithField("file", name).Error("Backup before save failed")
			}
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write temp for %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (s *Store) backupLocked(name string) (string, error) {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102_150405"))
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", err
	}
	return backup, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}
