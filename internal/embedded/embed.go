// Package embedded carries the sample caption scripts shipped inside the binary.
package embedded

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed samples/*.cap
var SamplesFS embed.FS

const samplesDir = "samples"

// ListSamples returns the sample names, without extension, sorted
func ListSamples() ([]string, error) {
	entries, err := fs.ReadDir(SamplesFS, samplesDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, strings.TrimSuffix(e.Name(), ".cap"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// GetSample returns the content of a sample by name, with or without extension
func GetSample(name string) (string, error) {
	name = strings.TrimSuffix(name, ".cap")
	content, err := SamplesFS.ReadFile(path.Join(samplesDir, name+".cap"))
	if err != nil {
		return "", fmt.Errorf("unknown sample %q: %w", name, err)
	}
	return string(content), nil
}

// ExtractSamples writes every sample into targetDir and returns the written paths.
// Existing files are only replaced when force is set.
func ExtractSamples(targetDir string, force bool) ([]string, error) {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}

	names, err := ListSamples()
	if err != nil {
		return nil, err
	}

	var written []string
	for _, name := range names {
		target := filepath.Join(targetDir, name+".cap")
		if _, err := os.Stat(target); err == nil && !force {
			return written, fmt.Errorf("%s already exists (use --force to overwrite)", target)
		}

		content, err := GetSample(name)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("failed to write file %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}
