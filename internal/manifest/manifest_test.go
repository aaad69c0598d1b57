package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "trident.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAcceptsAWellFormedManifest(t *testing.T) {
	path := writeManifest(t, `
[project]
name = "example"
version = "0.1.0"
entry = "main.tri"
vm = "triton"
`)
	m, errs := Load(path)
	require.Empty(t, errs)
	assert.Equal(t, "example", m.Project.Name)
	assert.Equal(t, "triton", m.Project.VM)
}

func TestValidateRequiresName(t *testing.T) {
	m := &Manifest{Project: Project{Entry: "main.tri", VM: "triton"}}
	errs := m.Validate()
	require.NotEmpty(t, errs)
	assert.Equal(t, "MAN002", errs[0].Code)
}

func TestValidateRequiresEntry(t *testing.T) {
	m := &Manifest{Project: Project{Name: "example", VM: "triton"}}
	errs := m.Validate()
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Code == "MAN002" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateRequiresVM(t *testing.T) {
	m := &Manifest{Project: Project{Name: "example", Entry: "main.tri"}}
	errs := m.Validate()
	require.NotEmpty(t, errs)
}

func TestValidateRejectsDependencyWithNeitherPathNorVersion(t *testing.T) {
	m := &Manifest{
		Project:      Project{Name: "example", Entry: "main.tri", VM: "triton"},
		Dependencies: map[string]Dependency{"foo": {}},
	}
	errs := m.Validate()
	require.NotEmpty(t, errs)
	assert.Equal(t, "MAN003", errs[0].Code)
}

func TestValidateRejectsDependencyWithBothPathAndVersion(t *testing.T) {
	m := &Manifest{
		Project:      Project{Name: "example", Entry: "main.tri", VM: "triton"},
		Dependencies: map[string]Dependency{"foo": {Path: "../foo", Version: "1.0.0"}},
	}
	errs := m.Validate()
	require.NotEmpty(t, errs)
	assert.Equal(t, "MAN003", errs[0].Code)
}

func TestValidateAcceptsADependencyWithOnlyPath(t *testing.T) {
	m := &Manifest{
		Project:      Project{Name: "example", Entry: "main.tri", VM: "triton"},
		Dependencies: map[string]Dependency{"foo": {Path: "../foo"}},
	}
	assert.Empty(t, m.Validate())
}

func TestLoadReportsMalformedToml(t *testing.T) {
	path := writeManifest(t, `not = [valid toml`)
	_, errs := Load(path)
	require.NotEmpty(t, errs)
	assert.Equal(t, "MAN001", errs[0].Code)
}
