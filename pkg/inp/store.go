package inp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/numerics88/inpdeck/internal/femodel"
)

var modelsBucket = []byte("models")

// Store persists parsed models in a bbolt database keyed by deck path.
//
// Each record carries the size and modification time of the deck it was read
// from. A record whose deck has changed since is treated as missing, so Load
// re-parses and refreshes it.
type Store struct {
	// Logger receives debug messages. Nil means slog.Default().
	Logger *slog.Logger

	filename string
	db       *bolt.DB
}

// storedModel is the JSON value kept for each deck.
type storedModel struct {
	Size      int64            `json:"size"`
	ModTime   int64            `json:"mod_time"`
	Name      string           `json:"name"`
	Warnings  []string         `json:"warnings,omitempty"`
	LineCount int64            `json:"line_count"`
	Snapshot  femodel.Snapshot `json:"snapshot"`
}

// OpenStore opens or creates the store database at filename.
func OpenStore(filename string) (*Store, error) {
	db, err := bolt.Open(filename, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", filename, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(modelsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open store %s: %w", filename, err)
	}
	return &Store{filename: filename, db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) logf(format string, args ...any) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug(fmt.Sprintf(format, args...), "store", s.filename)
}

func storeKey(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return []byte(abs), nil
}

// Put records m as the model read from the deck at path.
func (s *Store) Put(path string, m *Model) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("store put: %w", err)
	}
	key, err := storeKey(path)
	if err != nil {
		return fmt.Errorf("store put: %w", err)
	}
	js, err := json.Marshal(storedModel{
		Size:      info.Size(),
		ModTime:   info.ModTime().UnixNano(),
		Name:      m.Name(),
		Warnings:  m.Warnings(),
		LineCount: m.LineCount(),
		Snapshot:  m.fem.Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("store put: %w", err)
	}
	s.logf("Put %s (%d bytes)", key, len(js))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(modelsBucket).Put(key, js)
	})
}

// Get returns the stored model for the deck at path. It reports false when
// there is no record or the deck changed since it was stored.
func (s *Store) Get(path string) (*Model, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("store get: %w", err)
	}
	key, err := storeKey(path)
	if err != nil {
		return nil, false, fmt.Errorf("store get: %w", err)
	}

	var rec *storedModel
	err = s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(modelsBucket).Get(key)
		if bs == nil {
			return nil
		}
		rec = &storedModel{}
		return json.Unmarshal(bs, rec)
	})
	if err != nil {
		return nil, false, fmt.Errorf("store get %s: %w", path, err)
	}
	if rec == nil {
		s.logf("Get %s: not stored", key)
		return nil, false, nil
	}
	if rec.Size != info.Size() || rec.ModTime != info.ModTime().UnixNano() {
		s.logf("Get %s: deck changed", key)
		return nil, false, nil
	}

	fem, err := femodel.FromSnapshot(rec.Snapshot)
	if err != nil {
		return nil, false, fmt.Errorf("store get %s: %w", path, err)
	}
	return &Model{fem: fem, name: rec.Name, warnings: rec.Warnings, lineCount: rec.LineCount}, true, nil
}

// Delete removes the record for path. Deleting a missing record is not an
// error.
func (s *Store) Delete(path string) error {
	key, err := storeKey(path)
	if err != nil {
		return fmt.Errorf("store delete: %w", err)
	}
	s.logf("Delete %s", key)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(modelsBucket).Delete(key)
	})
}

// Paths returns the absolute deck paths with a stored record, in key order.
func (s *Store) Paths() ([]string, error) {
	var paths []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(modelsBucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			paths = append(paths, string(k))
		}
		return nil
	})
	return paths, err
}

// Load returns the stored model for path when it is current, and otherwise
// parses the deck with p and stores the result. A record that cannot be
// restored is replaced. Failing to store the new record is not an error.
func (s *Store) Load(p Parser, path string, opts ParseOptions) (*Model, error) {
	m, ok, err := s.Get(path)
	if err == nil && ok {
		s.logf("Load %s: from store", path)
		return m, nil
	}
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil, err
		}
		s.logf("Load %s: discarding record: %v", path, err)
	}

	m, err = p.ParseWithOptions(path, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Put(path, m); err != nil {
		s.logf("Load %s: not stored: %v", path, err)
	}
	return m, nil
}

// Loader returns a LoadFunc reading through the store.
func (s *Store) Loader(p Parser, opts ParseOptions) LoadFunc {
	return func(path string) (*Model, error) {
		return s.Load(p, path, opts)
	}
}
