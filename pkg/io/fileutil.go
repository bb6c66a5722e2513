package io

import (
	"fmt"
	"os"
	"path/filepath"
)

// MakeDirForFile creates all directories needed for a file path to be
// writable, reporting errors with the given description.
func MakeDirForFile(filePath string, desc string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create dir for %s: %w", desc, err)
	}
	return nil
}
