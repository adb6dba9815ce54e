package version

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Manifest is the package manifest holding the project version
type Manifest struct {
	Path string
}

// Version reads the version field of the manifest
func (m Manifest) Version() (string, error) {
	raw, err := os.ReadFile(m.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest: %w", err)
	}

	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return "", fmt.Errorf("failed to parse manifest %s: %w", m.Path, err)
	}
	if pkg.Version == "" {
		return "", fmt.Errorf("manifest %s has no version field", m.Path)
	}

	return pkg.Version, nil
}

// Writer rewrites the manifest version without tagging
type Writer interface {
	SetVersion(ctx context.Context, version string) error
}

// NPMWriter delegates the rewrite to the package manager
type NPMWriter struct {
	Command string
	Dir     string
	logger  *zap.Logger
}

// NewNPMWriter creates a writer running `<command> version <v> --no-git-tag-version` in dir
func NewNPMWriter(command, dir string, logger *zap.Logger) *NPMWriter {
	return &NPMWriter{
		Command: command,
		Dir:     dir,
		logger:  logger,
	}
}

// SetVersion runs the package manager to set the version
func (w *NPMWriter) SetVersion(ctx context.Context, version string) error {
	cmd := exec.CommandContext(ctx, w.Command, "version", version, "--no-git-tag-version")
	cmd.Dir = w.Dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run %s version: %w: %s", w.Command, err, strings.TrimSpace(string(output)))
	}

	w.logger.Debug("updated manifest version",
		zap.String("command", w.Command),
		zap.String("version", version),
	)

	return nil
}

var versionFieldPattern = regexp.MustCompile(`("version"\s*:\s*")[^"]*(")`)

// FileWriter rewrites the version field in place, keeping the rest of the file untouched
type FileWriter struct {
	Path   string
	logger *zap.Logger
}

// NewFileWriter creates a writer editing the manifest at path
func NewFileWriter(path string, logger *zap.Logger) *FileWriter {
	return &FileWriter{
		Path:   path,
		logger: logger,
	}
}

// SetVersion replaces the first version field of the manifest
func (w *FileWriter) SetVersion(_ context.Context, version string) error {
	info, err := os.Stat(w.Path)
	if err != nil {
		return fmt.Errorf("failed to stat manifest: %w", err)
	}

	raw, err := os.ReadFile(w.Path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	loc := versionFieldPattern.FindSubmatchIndex(raw)
	if loc == nil {
		return fmt.Errorf("manifest %s has no version field", w.Path)
	}

	var out []byte
	out = append(out, raw[:loc[3]]...)
	out = append(out, version...)
	out = append(out, raw[loc[4]:]...)

	if err := os.WriteFile(w.Path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	w.logger.Debug("updated manifest version",
		zap.String("path", filepath.Base(w.Path)),
		zap.String("version", version),
	)

	return nil
}
