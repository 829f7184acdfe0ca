package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ErrEnvFileNotFound is returned when the requested env file does not exist.
var ErrEnvFileNotFound = errors.New("env file not found")

// ParseEnvFile reads KEY=VALUE pairs from path. Values may be double-quoted.
// Lines that do not parse are skipped; they never fail the whole file.
func ParseEnvFile(path string) (map[string]string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrEnvFileNotFound)
		}

		return nil, fmt.Errorf("read env file: %w", err)
	}

	values := make(map[string]string)

	// Parse line by line so that a single malformed entry only drops itself.
	scanner := bufio.NewScanner(bytes.NewReader(contents))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}

		parsed, err := godotenv.Unmarshal(line)
		if err != nil {
			continue
		}

		for key, value := range parsed {
			if key == "" {
				continue
			}

			values[key] = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan env file: %w", err)
	}

	return values, nil
}

// ImportEnvFile loads path into the process environment.
// It returns false when the file is missing or unreadable.
func ImportEnvFile(path string) bool {
	values, err := ParseEnvFile(path)
	if err != nil {
		return false
	}

	for key, value := range values {
		if err := os.Setenv(key, value); err != nil {
			return false
		}
	}

	return true
}
