package collection

import (
	"fmt"
	"os"
)

// ListMediaDir returns the file names in the media directory.
// Subdirectories (the host keeps none, users sometimes do) are skipped.
func ListMediaDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("collection: list media dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
