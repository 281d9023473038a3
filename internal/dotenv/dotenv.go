// Package dotenv loads KEY=VALUE files into the process environment before the
// configuration document is interpolated.
package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultPath is the env file read when no path is given.
const DefaultPath = ".env"

// Load sets the variables from path that are not already present in the
// environment. A missing file is not an error; loaded reports whether it existed.
func Load(path string) (loaded bool, err error) {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load env file %s: %w", path, err)
	}
	return true, nil
}

// Read parses path without modifying the environment.
func Read(path string) (map[string]string, error) {
	if path == "" {
		path = DefaultPath
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}
