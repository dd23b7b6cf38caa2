package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPlaceholderMissing is returned when a template has nothing to substitute
var ErrPlaceholderMissing = errors.New("placeholder not found in template")

// Workspace manages the .awx-local directory structure
type Workspace struct {
	Root        string
	ManifestDir string
}

// New creates a workspace at the given path
func New(root string) (*Workspace, error) {
	ws := &Workspace{
		Root:        root,
		ManifestDir: filepath.Join(root, "manifests"),
	}

	if err := os.MkdirAll(ws.ManifestDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", ws.ManifestDir, err)
	}

	gitignore := `# awx-local rendered files
manifests/
`
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte(gitignore), 0644); err != nil {
		return nil, fmt.Errorf("failed to write .gitignore: %w", err)
	}

	return ws, nil
}

// RenderManifest copies the template into the manifest directory with every
// occurrence of placeholder replaced by value. The rendered file is
// overwritten on each call and its path is returned.
func (w *Workspace) RenderManifest(template, placeholder, value string) (string, error) {
	content, err := os.ReadFile(template)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest template: %w", err)
	}

	if !strings.Contains(string(content), placeholder) {
		return "", fmt.Errorf("%s: %w: %s", template, ErrPlaceholderMissing, placeholder)
	}
	rendered := strings.ReplaceAll(string(content), placeholder, value)

	name := strings.TrimSuffix(filepath.Base(template), ".tmpl")
	if err := w.WriteManifest(name, []byte(rendered)); err != nil {
		return "", err
	}
	return filepath.Join(w.ManifestDir, name), nil
}

// WriteManifest writes a Kubernetes manifest to the manifest directory
func (w *Workspace) WriteManifest(name string, content []byte) error {
	if err := os.WriteFile(filepath.Join(w.ManifestDir, name), content, 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", name, err)
	}
	return nil
}
