// Package archive packs a rendered report directory into a tar.xz file, the
// form it is kept and shared in once the report server is gone.
package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

// Extension is appended to the directory name when no destination is given.
const Extension = ".tar.xz"

// DefaultPath returns the archive path for a directory: "<dir>.tar.xz".
func DefaultPath(dir string) string {
	return filepath.Clean(dir) + Extension
}

// Create writes every regular file under dir to a tar.xz archive at dest.
// Entries are rooted at the directory base name.
func Create(dir, dest string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "unable to read directory %s", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", dir)
	}

	f, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, "unable to create archive %s", dest)
	}
	defer f.Close()

	xw, err := xz.NewWriter(f)
	if err != nil {
		return errors.Wrap(err, "unable to create xz writer")
	}
	tw := tar.NewWriter(xw)

	root := filepath.Base(filepath.Clean(dir))
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(root, rel))
		if d.IsDir() {
			return addDir(tw, name, d)
		}
		if !d.Type().IsRegular() {
			log.Debugf("archive: skipping %s", path)
			return nil
		}
		return addFile(tw, name, path)
	})
	if err != nil {
		return errors.Wrapf(err, "unable to archive %s", dir)
	}

	if err := tw.Close(); err != nil {
		return err
	}
	if err := xw.Close(); err != nil {
		return err
	}
	log.Infof("Archive saved to %s", dest)
	return f.Close()
}

func addDir(tw *tar.Writer, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name + "/"
	return tw.WriteHeader(hdr)
}

func addFile(tw *tar.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, src)
	return err
}

// Open returns a tar reader over a tar.xz stream.
func Open(r io.Reader) (*tar.Reader, error) {
	file, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return tar.NewReader(file), nil
}
