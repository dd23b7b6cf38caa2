package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const template = `---
apiVersion: awx.ansible.com/v1beta1
kind: AWX
metadata:
  name: AWX_INSTANCE_NAME
spec:
  service_type: nodeport
  hostname: AWX_INSTANCE_NAME.local
`

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "awx-demo.yml.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".awx-local")
	ws, err := New(root)
	require.NoError(t, err)

	assert.DirExists(t, ws.ManifestDir)
	assert.FileExists(t, filepath.Join(root, ".gitignore"))

	// Reopening an existing workspace is fine
	_, err = New(root)
	require.NoError(t, err)
}

func TestRenderManifestReplacesEveryOccurrence(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := ws.RenderManifest(writeTemplate(t, template), "AWX_INSTANCE_NAME", "awx-demo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.ManifestDir, "awx-demo.yml"), path)

	rendered, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "name: awx-demo\n")
	assert.Contains(t, string(rendered), "hostname: awx-demo.local\n")
	assert.NotContains(t, string(rendered), "AWX_INSTANCE_NAME")
}

func TestRenderManifestOverwrites(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)
	tmpl := writeTemplate(t, template)

	_, err = ws.RenderManifest(tmpl, "AWX_INSTANCE_NAME", "first")
	require.NoError(t, err)
	path, err := ws.RenderManifest(tmpl, "AWX_INSTANCE_NAME", "second")
	require.NoError(t, err)

	rendered, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(rendered), "first")
	assert.Contains(t, string(rendered), "name: second\n")
}

func TestRenderManifestWithoutTmplSuffix(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "awx.yaml")
	require.NoError(t, os.WriteFile(src, []byte("name: AWX_INSTANCE_NAME\n"), 0644))

	path, err := ws.RenderManifest(src, "AWX_INSTANCE_NAME", "awx-demo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.ManifestDir, "awx.yaml"), path)
	assert.NotEqual(t, src, path)
}

func TestRenderManifestErrors(t *testing.T) {
	ws, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = ws.RenderManifest(filepath.Join(t.TempDir(), "missing.yml.tmpl"), "AWX_INSTANCE_NAME", "awx-demo")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ws.RenderManifest(writeTemplate(t, "kind: AWX\n"), "AWX_INSTANCE_NAME", "awx-demo")
	assert.ErrorIs(t, err, ErrPlaceholderMissing)
	assert.NoFileExists(t, filepath.Join(ws.ManifestDir, "awx-demo.yml"))
}
