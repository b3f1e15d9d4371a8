// Package scan produces the file descriptors the analyze pipeline consumes.
package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lexcodex/declutter/organizer"
)

// Directory lists the immediate entries of dir. Regular files become
// descriptors; first-level subdirectory names are returned separately so
// callers can pass them as the existing structure. Dot-entries are skipped.
func Directory(dir string) ([]organizer.FileDescriptor, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var files []organizer.FileDescriptor
	var subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			subdirs = append(subdirs, name)
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, organizer.FileDescriptor{
			Name:      name,
			Extension: filepath.Ext(name),
			Size:      info.Size(),
			Modified:  info.ModTime(),
		})
	}
	return files, subdirs, nil
}
