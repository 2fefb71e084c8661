// Package assets holds the filesystem with the report page templates,
// embedded by the main package.
package assets

import (
	"io/fs"
)

var efs fs.FS

func GetData() fs.FS {
	return efs
}

func UpdateData(d fs.FS) {
	efs = d
}

// GetAllFilenames return all file names under a path of the filesystem.
func GetAllFilenames(fsys fs.FS, path string) (files []string, err error) {
	if err := fs.WalkDir(fsys, path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		files = append(files, path)

		return nil
	}); err != nil {
		return nil, err
	}

	return files, nil
}
