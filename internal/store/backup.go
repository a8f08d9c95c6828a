package store

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tallybook-dev/tallybook/internal/errs"
)

// Backup zips a company's entire directory into destDir and returns
// the archive path.
func (s *Store) Backup(company, destDir string) (string, error) {
	src := s.CompanyPath(company)
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("company %q: %w", company, errs.ErrNotFound)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	zipPath := filepath.Join(destDir, Slug(company)+".zip")
	f, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("creating backup archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		zw.Close()
		return "", fmt.Errorf("archiving company %q: %w", company, err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalizing backup archive: %w", err)
	}

	s.log.WithField("company", company).WithField("archive", zipPath).Info("company backed up")
	return zipPath, nil
}

// Restore unpacks a company backup archive into the companies
// directory, replacing any existing directory of the same name, and
// resyncs the global index so the restored company is registered. The
// target company name is taken from the archive filename.
func (s *Store) Restore(zipPath string) error {
	company := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	if company == "" {
		return fmt.Errorf("cannot derive company name from %q", zipPath)
	}
	target := s.CompanyPath(company)

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("opening backup archive: %w", err)
	}
	defer zr.Close()

	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("clearing restore target: %w", err)
	}

	for _, zf := range zr.File {
		name := filepath.FromSlash(zf.Name)
		// Reject entries that escape the target directory.
		dest := filepath.Join(target, name)
		if !strings.HasPrefix(dest, filepath.Clean(target)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes restore target", zf.Name)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("restoring %s: %w", zf.Name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("restoring %s: %w", zf.Name, err)
		}
		if err := extractFile(zf, dest); err != nil {
			return fmt.Errorf("restoring %s: %w", zf.Name, err)
		}
	}

	if err := s.ResyncIndex(); err != nil {
		return err
	}
	s.log.WithField("company", company).Info("company restored from backup")
	return nil
}

func extractFile(zf *zip.File, dest string) error {
	in, err := zf.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
