// Package store implements per-company durable storage: named JSON
// collections under an isolated directory per company, a global
// company index, atomic replace-on-write, and a resync operation that
// rebuilds the index from the per-company metadata records.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tallybook-dev/tallybook/internal/errs"
	"github.com/tallybook-dev/tallybook/internal/model"
)

const (
	companiesDir = "companies"
	indexFile    = "companies.json"
	metaKey      = "meta"
)

// Store is a handle to one data directory. It is safe for concurrent
// use; read-modify-write sequences must run under WithLock so that a
// single logical writer per company is enforced.
type Store struct {
	dataDir string
	log     *logrus.Logger

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex
}

// Open prepares a data directory (creating it and the company index if
// needed) and returns a Store. A nil logger falls back to the logrus
// standard logger.
func Open(dataDir string, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Join(dataDir, companiesDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{dataDir: dataDir, log: log, locks: make(map[string]*sync.Mutex)}

	indexPath := filepath.Join(dataDir, indexFile)
	if _, err := os.Stat(indexPath); errors.Is(err, fs.ErrNotExist) {
		if err := s.saveIndex(map[string]model.CompanyMeta{}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DataDir returns the root data directory the store was opened on.
func (s *Store) DataDir() string {
	return s.dataDir
}

// CompanyPath returns the directory holding a company's collections.
func (s *Store) CompanyPath(company string) string {
	return filepath.Join(s.dataDir, companiesDir, Slug(company))
}

// Slug sanitizes a company name into a directory name.
func Slug(name string) string {
	name = strings.TrimSpace(name)
	repl := strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_", "\x00", "_")
	return repl.Replace(name)
}

// WithLock runs fn while holding the company's mutex. Every
// read-modify-write sequence against a company's collections must go
// through here.
func (s *Store) WithLock(company string, fn func() error) error {
	s.mu.Lock()
	l, ok := s.locks[Slug(company)]
	if !ok {
		l = &sync.Mutex{}
		s.locks[Slug(company)] = l
	}
	s.mu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn()
}

// Load reads a named collection for a company into v. It returns
// found=false (and leaves v untouched) when the collection does not
// exist yet; a collection that exists but cannot be decoded is an
// error, so callers can distinguish "empty" from "corrupt".
func (s *Store) Load(company, key string, v any) (bool, error) {
	path := s.collectionPath(company, key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s for %q: %w", key, company, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s for %q: %w", key, company, err)
	}
	return true, nil
}

// Save writes a named collection for a company atomically: the value
// is encoded to a temporary file in the same directory, then renamed
// over the target. A crash mid-write never leaves a half-written
// collection visible under the real key.
func (s *Store) Save(company, key string, v any) error {
	path := s.collectionPath(company, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating company dir for %q: %w", company, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s for %q: %w", key, company, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing %s for %q: %w", key, company, err)
	}
	return nil
}

// CreateCompany provisions a new company: its directory, its metadata
// record, its seed collections, and its entry in the global index.
// It fails with errs.ErrAlreadyExists when the name is taken.
func (s *Store) CreateCompany(meta model.CompanyMeta, seed map[string]any) error {
	if strings.TrimSpace(meta.Name) == "" {
		return fmt.Errorf("company name must not be empty")
	}

	idx, err := s.loadIndex()
	if err != nil {
		return err
	}
	if _, taken := idx[meta.Name]; taken {
		return fmt.Errorf("company %q: %w", meta.Name, errs.ErrAlreadyExists)
	}
	dir := s.CompanyPath(meta.Name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("company %q: %w", meta.Name, errs.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.ModifiedAt = now
	if meta.Status == "" {
		meta.Status = "Active"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating company dir for %q: %w", meta.Name, err)
	}

	cleanup := func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.log.WithError(rmErr).Warnf("cleanup of partially created company %q failed", meta.Name)
		}
	}

	if err := s.Save(meta.Name, metaKey, meta); err != nil {
		cleanup()
		return err
	}
	for key, value := range seed {
		if err := s.Save(meta.Name, key, value); err != nil {
			cleanup()
			return err
		}
	}

	idx[meta.Name] = meta
	if err := s.saveIndex(idx); err != nil {
		cleanup()
		return err
	}

	s.log.WithField("company", meta.Name).Info("company created")
	return nil
}

// DeleteCompany removes a company's entire directory and its index
// entry. Removal is best-effort across the two steps: if the index
// write fails after the directory is gone, ResyncIndex recovers.
func (s *Store) DeleteCompany(name string) error {
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}
	if _, ok := idx[name]; !ok {
		return fmt.Errorf("company %q: %w", name, errs.ErrNotFound)
	}

	if err := os.RemoveAll(s.CompanyPath(name)); err != nil {
		return fmt.Errorf("removing company %q: %w", name, err)
	}

	delete(idx, name)
	if err := s.saveIndex(idx); err != nil {
		return err
	}

	s.log.WithField("company", name).Info("company deleted")
	return nil
}

// Companies returns the global index of company name to metadata.
func (s *Store) Companies() (map[string]model.CompanyMeta, error) {
	return s.loadIndex()
}

// Meta returns the metadata record for one company.
func (s *Store) Meta(name string) (model.CompanyMeta, error) {
	var meta model.CompanyMeta
	found, err := s.Load(name, metaKey, &meta)
	if err != nil {
		return model.CompanyMeta{}, err
	}
	if !found {
		return model.CompanyMeta{}, fmt.Errorf("company %q: %w", name, errs.ErrNotFound)
	}
	return meta, nil
}

// ResyncIndex rebuilds the global company index by scanning every
// company directory and reading its metadata record. Directories with
// missing or corrupt metadata are skipped. This is the recovery path
// after restores or manual copies that bypassed the index.
func (s *Store) ResyncIndex() error {
	root := filepath.Join(s.dataDir, companiesDir)
	dirs, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("scanning companies dir: %w", err)
	}

	idx := make(map[string]model.CompanyMeta)
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, d.Name(), metaKey+".json"))
		if err != nil {
			continue
		}
		var meta model.CompanyMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			s.log.WithField("dir", d.Name()).Warn("skipping company with corrupt metadata during resync")
			continue
		}
		if meta.Name == "" {
			continue
		}
		idx[meta.Name] = meta
	}

	if err := s.saveIndex(idx); err != nil {
		return err
	}
	s.log.WithField("companies", len(idx)).Info("company index resynced")
	return nil
}

func (s *Store) collectionPath(company, key string) string {
	return filepath.Join(s.CompanyPath(company), key+".json")
}

func (s *Store) loadIndex() (map[string]model.CompanyMeta, error) {
	path := filepath.Join(s.dataDir, indexFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]model.CompanyMeta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading company index: %w", err)
	}
	idx := make(map[string]model.CompanyMeta)
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decoding company index: %w", err)
	}
	return idx, nil
}

func (s *Store) saveIndex(idx map[string]model.CompanyMeta) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding company index: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dataDir, indexFile), data); err != nil {
		return fmt.Errorf("writing company index: %w", err)
	}
	return nil
}
