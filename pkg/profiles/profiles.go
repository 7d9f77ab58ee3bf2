// Package profiles enumerates AWS credential profiles from the shared
// credentials file.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/config"
	"gopkg.in/ini.v1"
)

// Store lists the credential profiles available to a run.
type Store interface {
	ListProfiles(ctx context.Context) ([]string, error)
}

// ReadError reports a credentials file that exists but could not be read or
// parsed.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read credentials file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// FileStore reads profile names from an INI formatted credentials file.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore for path, or for DefaultPath when path is
// empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{Path: path}
}

// DefaultPath returns AWS_SHARED_CREDENTIALS_FILE when set, otherwise
// ~/.aws/credentials.
func DefaultPath() string {
	if p := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); p != "" {
		return p
	}
	return config.DefaultSharedCredentialsFilename()
}

// ListProfiles returns the section names of the credentials file in file
// order. The INI default section is not a profile. A missing file yields no
// profiles and no error.
func (s *FileStore) ListProfiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		SkipUnrecognizableLines: false,
	}, s.Path)
	if err != nil {
		return nil, &ReadError{Path: s.Path, Err: err}
	}

	names := make([]string, 0, len(cfg.Sections()))
	for _, name := range cfg.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Static is a fixed profile list.
type Static []string

// ListProfiles returns a copy of the list.
func (s Static) ListProfiles(context.Context) ([]string, error) {
	return append([]string{}, s...), nil
}

// Filter keeps the names that contain a match for pattern (search, not full
// match). An empty pattern matches everything.
func Filter(names []string, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = ".*"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid profile filter %q: %w", pattern, err)
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if re.MatchString(name) {
			out = append(out, name)
		}
	}
	return out, nil
}
