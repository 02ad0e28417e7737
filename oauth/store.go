package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const (
	credentialDir      = ".qwen"
	credentialFilename = "oauth_creds.json"
)

// ResolvePath resolves a credential file location. An empty custom path
// yields the default ~/.qwen/oauth_creds.json, a leading ~/ is expanded, and
// anything else is made absolute.
func ResolvePath(custom string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	if custom == "" {
		return filepath.Join(home, credentialDir, credentialFilename), nil
	}

	if strings.HasPrefix(custom, "~/") {
		return filepath.Join(home, custom[2:]), nil
	}

	abs, err := filepath.Abs(custom)
	if err != nil {
		return "", fmt.Errorf("resolve credentials path %s: %w", custom, err)
	}

	return abs, nil
}

// Load reads and parses the credential file. Missing fields are tolerated;
// validity is checked downstream.
func Load(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}

		return nil, fmt.Errorf("read credentials file %s: %w", path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return &creds, nil
}

// Save persists the credential record, creating the parent directory when
// absent. The record is written to a temp file and renamed so concurrent
// readers never observe a partial file.
func Save(creds *Credentials, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, credentialFilename+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("write credentials: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("chmod credentials file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("close temp credentials file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("replace credentials file %s: %w", path, err)
	}

	return nil
}

// WithLock runs fn while holding an advisory lock next to the credential
// file, making the load-check-refresh-save sequence atomic across processes.
func WithLock(path string, fn func() error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials directory %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock credentials file %s: %w", path, err)
	}

	defer func() {
		_ = lock.Unlock()
	}()

	return fn()
}
