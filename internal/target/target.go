// Package target loads and validates target (VM/OS) configuration, the
// parameterization every later phase (types, tirbuild, lower, cost)
// reads to stay target-generic (spec.md §3 "Target config", §4.3).
package target

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/tridentlang/trident/internal/errors"
)

// Family is the lowering path a target uses (spec.md §2).
type Family string

const (
	FamilyStack    Family = "stack"
	FamilyRegister Family = "register"
	FamilyTree     Family = "tree"
	FamilyKernel   Family = "kernel"
)

// Tier is the IR tier ceiling a target can execute (spec.md §3).
type Tier int

const (
	Tier0 Tier = iota
	Tier1
	Tier2
	Tier3
)

// FieldConfig describes the active target's base field.
type FieldConfig struct {
	Modulus string `toml:"modulus"`
	Limbs   int    `toml:"limbs"`
}

// HashConfig describes the active target's hash function.
type HashConfig struct {
	Name        string `toml:"name"`
	Rate        int    `toml:"rate"`         // R
	DigestWidth int    `toml:"digest_width"` // D
}

// MemoryConfig describes RAM semantics for spill/reload and storage ops.
type MemoryConfig struct {
	WordSize                 int  `toml:"word_size"`
	WriteOnce                bool `toml:"write_once"`
	NonDeterministicFirstRead bool `toml:"non_deterministic_on_first_read"`
}

// Config is a fully loaded, validated target configuration
// (spec.md §3 "Target config").
type Config struct {
	Name               string       `toml:"name"`
	FamilyRaw          string       `toml:"family"`
	Field              FieldConfig  `toml:"field"`
	Hash               HashConfig   `toml:"hash"`
	XFieldWidth        int          `toml:"xfield_width"`
	StackDepth         int          `toml:"stack_depth"`
	Memory             MemoryConfig `toml:"memory"`
	CostModel          string       `toml:"cost_model"`
	TierCeilingRaw      int          `toml:"tier_ceiling"`
	ExtensionModules   []string     `toml:"extension_modules"`
	OS                 string       `toml:"os"` // set when loaded from an os/<name>.toml overlay

	path string
}

// Family returns the target's lowering family.
func (c *Config) Family() Family { return Family(c.FamilyRaw) }

// TierCeiling returns the target's maximum supported IR tier.
func (c *Config) TierCeiling() Tier { return Tier(c.TierCeilingRaw) }

// DigestWidth is D, the width in field elements of a Digest.
func (c *Config) DigestWidth() int { return c.Hash.DigestWidth }

// ExtensionDegree is E, the degree of the extension field (0 if absent).
func (c *Config) ExtensionDegree() int { return c.XFieldWidth }

// HasExtensionField reports whether XField is usable on this target.
func (c *Config) HasExtensionField() bool { return c.XFieldWidth > 0 }

// Load reads and validates `vm/<name>.toml` under root, and if
// `os/<osName>.toml` exists and osName != "", overlays its OS-specific
// fields (spec.md §3: "optionally `os/<name>.toml`").
func Load(root, vmName, osName string) (*Config, errors.List) {
	var errs errors.List

	vmPath := filepath.Join(root, "vm", vmName+".toml")
	cfg, err := loadFile(vmPath)
	if err != nil {
		errs = append(errs, errors.New(errors.TGT005, errors.PhaseTarget,
			fmt.Sprintf("failed to load target config %q: %v", vmPath, err), errors.ZeroSpan()))
		return nil, errs
	}
	cfg.path = vmPath

	if osName != "" {
		osPath := filepath.Join(root, "os", osName+".toml")
		if _, statErr := os.Stat(osPath); statErr == nil {
			osCfg, err := loadFile(osPath)
			if err != nil {
				errs = append(errs, errors.New(errors.TGT005, errors.PhaseTarget,
					fmt.Sprintf("failed to load OS config %q: %v", osPath, err), errors.ZeroSpan()))
				return nil, errs
			}
			cfg.OS = osCfg.Name
			if osCfg.TierCeilingRaw > 0 && osCfg.TierCeilingRaw < cfg.TierCeilingRaw {
				cfg.TierCeilingRaw = osCfg.TierCeilingRaw
			}
			cfg.ExtensionModules = append(cfg.ExtensionModules, osCfg.ExtensionModules...)
		}
	}

	errs = append(errs, validate(cfg)...)
	if errs.HasErrors() {
		return nil, errs
	}
	return cfg, errs
}

func loadFile(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) errors.List {
	var errs errors.List
	switch cfg.Family() {
	case FamilyStack, FamilyRegister, FamilyTree, FamilyKernel:
	default:
		errs = append(errs, errors.New(errors.TGT005, errors.PhaseTarget,
			fmt.Sprintf("target %q has unknown family %q", cfg.Name, cfg.FamilyRaw), errors.ZeroSpan()))
	}
	if cfg.TierCeilingRaw < 0 || cfg.TierCeilingRaw > 3 {
		errs = append(errs, errors.New(errors.TGT005, errors.PhaseTarget,
			fmt.Sprintf("target %q has invalid tier_ceiling %d (must be 0-3)", cfg.Name, cfg.TierCeilingRaw), errors.ZeroSpan()))
	}
	if cfg.StackDepth <= 0 && cfg.Family() == FamilyStack {
		errs = append(errs, errors.New(errors.TGT005, errors.PhaseTarget,
			fmt.Sprintf("stack-family target %q must declare a positive stack_depth", cfg.Name), errors.ZeroSpan()))
	}
	return errs
}

// Registry is the compile-time-registered set of target configs
// shipped with the compiler, keyed by name (spec.md §6: "a target
// registry (list of VM/OS configs shipped with the compiler)").
type Registry struct {
	root    string
	loaded  map[string]*Config
}

// NewRegistry creates a Registry rooted at the directory containing
// `vm/` and `os/` subdirectories.
func NewRegistry(root string) *Registry {
	return &Registry{root: root, loaded: map[string]*Config{}}
}

// Get loads (and caches) the named target, with an optional OS overlay.
func (r *Registry) Get(vmName, osName string) (*Config, errors.List) {
	key := vmName + "/" + osName
	if cfg, ok := r.loaded[key]; ok {
		return cfg, nil
	}
	cfg, errs := Load(r.root, vmName, osName)
	if errs.HasErrors() {
		return nil, errs
	}
	r.loaded[key] = cfg
	return cfg, errs
}
