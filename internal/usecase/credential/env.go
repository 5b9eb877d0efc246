package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvSource reads a dotenv file first and falls back to the process environment.
// A missing dotenv file is not an error.
type EnvSource struct {
	file      string
	lookupEnv func(string) (string, bool)
}

// NewEnvSource creates a source over the dotenv file at path. An empty path skips the file.
func NewEnvSource(path string) *EnvSource {
	return &EnvSource{file: path, lookupEnv: os.LookupEnv}
}

// Lookup returns the first non-blank value for name.
func (s *EnvSource) Lookup(name string) (string, bool, error) {
	if s.file != "" {
		vars, err := godotenv.Read(s.file)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return "", false, fmt.Errorf("read %s: %w", s.file, err)
		default:
			if v := strings.TrimSpace(vars[name]); v != "" {
				return v, true, nil
			}
		}
	}

	if v, ok := s.lookupEnv(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true, nil
	}
	return "", false, nil
}
