package mwlib

import (
	"os"
	"path/filepath"
)

// GetWorkingDir returns the directory holding the bot's state files:
// $WIKI_BOTTING_DIR if set, else the current directory.
func GetWorkingDir() string {
	dir := os.Getenv("WIKI_BOTTING_DIR")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		dir = wd
	}
	return dir
}

// WorkingFile returns the path of name inside the working directory.
func WorkingFile(name string) string {
	return filepath.Join(GetWorkingDir(), name)
}
