// Package manifest loads and validates a project's trident.toml, the
// declaration of entry point, target, and dependencies that the
// pipeline reads before it touches any source file.
//
// Grounded on the teacher's internal/manifest/manifest.go (Manifest
// struct, Load/Validate pattern), adapted from JSON to TOML via
// BurntSushi/toml since Trident's ambient config format is TOML
// throughout (see internal/target).
package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/tridentlang/trident/internal/errors"
)

// Project holds the [project] table of trident.toml.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Entry   string `toml:"entry"`  // path to the program's entry .tri file
	VM      string `toml:"vm"`     // target VM name, e.g. "triton"
	OS      string `toml:"os"`     // optional OS overlay name
}

// Dependency is one [dependencies.<name>] entry.
type Dependency struct {
	Path    string `toml:"path"`    // local filesystem path, if a path dependency
	Version string `toml:"version"` // semantic version constraint, if registry-resolved
}

// Manifest is the fully parsed, validated trident.toml.
type Manifest struct {
	Project      Project               `toml:"project"`
	Dependencies map[string]Dependency `toml:"dependencies"`

	path string
}

// Load reads and validates a trident.toml at path.
func Load(path string) (*Manifest, errors.List) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, errors.List{errors.New(errors.MAN001, errors.PhaseManifest,
			fmt.Sprintf("failed to parse manifest %q: %v", path, err), errors.ZeroSpan())}
	}
	m.path = path
	if errs := m.Validate(); errs.HasErrors() {
		return nil, errs
	}
	return &m, nil
}

// Validate checks required fields and dependency shape.
func (m *Manifest) Validate() errors.List {
	var errs errors.List
	if m.Project.Name == "" {
		errs = append(errs, errors.New(errors.MAN002, errors.PhaseManifest,
			"trident.toml: [project].name is required", errors.ZeroSpan()))
	}
	if m.Project.Entry == "" {
		errs = append(errs, errors.New(errors.MAN002, errors.PhaseManifest,
			"trident.toml: [project].entry is required", errors.ZeroSpan()))
	}
	if m.Project.VM == "" {
		errs = append(errs, errors.New(errors.MAN002, errors.PhaseManifest,
			"trident.toml: [project].vm is required", errors.ZeroSpan()))
	}
	for name, dep := range m.Dependencies {
		if dep.Path == "" && dep.Version == "" {
			errs = append(errs, errors.New(errors.MAN003, errors.PhaseManifest,
				fmt.Sprintf("dependency %q must set either path or version", name), errors.ZeroSpan()))
		}
		if dep.Path != "" && dep.Version != "" {
			errs = append(errs, errors.New(errors.MAN003, errors.PhaseManifest,
				fmt.Sprintf("dependency %q sets both path and version; only one is allowed", name), errors.ZeroSpan()))
		}
	}
	return errs
}
