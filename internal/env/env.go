// Package env loads environment variables from a .env file so that the node
// API key and the collection address do not have to be exported by hand.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultPath is the .env file looked up in the working directory.
const DefaultPath = ".env"

// Load reads KEY=VALUE pairs from path and exports them into the process
// environment.
//
// Behavior:
//   - A missing file is not an error; system environment variables still apply
//   - Variables already set in the environment win over the file
//   - Comments, quoting and "export" prefixes follow godotenv's rules
func Load(path string) error {
	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
