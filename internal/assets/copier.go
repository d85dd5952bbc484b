// Package assets mirrors the assets folder into the build folder.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
)

// Copier copies files from Src to the same relative location under Dst.
type Copier struct {
	fs     afero.Fs
	src    string
	dst    string
	logger *slog.Logger
}

// NewCopier creates a copier from src to dst.
func NewCopier(afs afero.Fs, src, dst string, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Copier{fs: afs, src: filepath.Clean(src), dst: filepath.Clean(dst), logger: logger}
}

// CopyAll copies the whole assets tree and returns the number of files
// copied. A missing assets folder copies nothing.
func (c *Copier) CopyAll() (int, error) {
	if ok, err := afero.DirExists(c.fs, c.src); err != nil || !ok {
		return 0, err
	}
	count := 0
	err := afero.Walk(c.fs, c.src, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(c.src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(c.dst, rel)
		if info.IsDir() {
			return c.fs.MkdirAll(target, 0o750)
		}
		if err := c.copyFile(p, target, info.Mode()); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, derrors.FileSystemError("copy assets", err).WithContext("path", c.src)
	}
	c.logger.Info("Copied assets", logfields.Path(c.src), logfields.Output(c.dst), logfields.Count(count))
	return count, nil
}

// Sync mirrors one changed file: it is copied when present and its copy is
// removed when the source is gone.
func (c *Copier) Sync(changed string) error {
	rel, err := filepath.Rel(c.src, filepath.Clean(changed))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return derrors.FileSystemError("sync asset", fmt.Errorf("%s is not inside %s", changed, c.src))
	}
	target := filepath.Join(c.dst, rel)

	info, err := c.fs.Stat(changed)
	if errors.Is(err, os.ErrNotExist) {
		if err := c.fs.RemoveAll(target); err != nil {
			return derrors.FileSystemError("remove asset", err).WithContext("path", target)
		}
		c.logger.Debug("Removed asset", logfields.Output(target))
		return nil
	}
	if err != nil {
		return derrors.FileSystemError("stat asset", err).WithContext("path", changed)
	}
	if info.IsDir() {
		return nil
	}
	if err := c.copyFile(changed, target, info.Mode()); err != nil {
		return derrors.FileSystemError("copy asset", err).WithContext("path", changed)
	}
	c.logger.Debug("Copied asset", logfields.Path(changed), logfields.Output(target))
	return nil
}

func (c *Copier) copyFile(src, dst string, mode fs.FileMode) error {
	if err := c.fs.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	in, err := c.fs.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := c.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
