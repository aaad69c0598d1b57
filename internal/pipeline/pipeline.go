// Package pipeline wires every compiler phase — module resolution,
// type checking, monomorphization, TIR building, lowering, cost
// estimation, and linking — into the single Compile entry point
// (spec.md §2 architecture diagram, §4).
//
// Grounded on the teacher's internal/pipeline/pipeline.go Config/
// Source/Artifacts/Result struct shape and Mode enum, adapted from
// Check/Eval modes to Trident's single compile mode plus a
// type-check-only short-circuit.
package pipeline

import (
	"fmt"
	"time"

	"github.com/tridentlang/trident/internal/cost"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/link"
	"github.com/tridentlang/trident/internal/lir"
	"github.com/tridentlang/trident/internal/lower"
	"github.com/tridentlang/trident/internal/module"
	"github.com/tridentlang/trident/internal/mono"
	"github.com/tridentlang/trident/internal/target"
	"github.com/tridentlang/trident/internal/tir"
	"github.com/tridentlang/trident/internal/tirbuild"
	"github.com/tridentlang/trident/internal/types"
)

// Mode selects how far the pipeline runs.
type Mode int

const (
	ModeCompile       Mode = iota // full pipeline through linking/lowering
	ModeTypeCheckOnly             // stop after internal/types.Check
)

// Config is every knob Compile needs beyond the entry file itself.
type Config struct {
	Mode        Mode
	SourceRoot  string // project root, searched for local `use` targets
	StdRoot     string // std.* module root
	ExtRoot     string // <os>.ext.* module root
	TargetsRoot string // directory containing vm/ and os/ subdirectories
	VMName      string
	OSName      string
	EmitCosts   bool
}

// PhaseTimings records how long each phase took, kept from the
// teacher's pipeline verbatim (it already threads wall-clock timings
// through an otherwise pure, sequential pipeline).
type PhaseTimings struct {
	Parse    time.Duration
	Check    time.Duration
	Mono     time.Duration
	Build    time.Duration
	Lower    time.Duration
	Link     time.Duration
	Total    time.Duration
}

// Artifacts is everything Compile produced.
type Artifacts struct {
	Program      *types.Program
	TIR          []tir.TIROp
	StackText    []string      // populated for FamilyStack targets
	RegisterText []string      // populated for FamilyRegister targets
	TreeNoun     *lower.Noun   // populated for FamilyTree targets
	TreeBytes    []byte
	Profile      cost.Profile // populated when Config.EmitCosts and target is stack-family
	Cycles       uint64       // populated when Config.EmitCosts and target is cycle/register-family
	MemAccesses  uint64
	OutputExt    string
	Timings      PhaseTimings
}

// Result is Compile's top-level return value.
type Result struct {
	Artifacts *Artifacts
	Errors    errors.List
}

// Compile runs the full pipeline: resolve modules, type-check, select
// an entry function, monomorphize, build TIR, lower for the target
// family, and (when requested) estimate cost.
func Compile(entryPath string, cfg Config) Result {
	start := time.Now()
	var timings PhaseTimings

	targetCfg, errs := target.Load(cfg.TargetsRoot, cfg.VMName, cfg.OSName)
	if errs.HasErrors() {
		return Result{Errors: errs}
	}

	t0 := time.Now()
	loader := module.NewLoader(cfg.SourceRoot, cfg.StdRoot, cfg.ExtRoot, targetCfg)
	mods, errs := loader.LoadEntry(entryPath)
	timings.Parse = time.Since(t0)
	if errs.HasErrors() {
		return Result{Errors: errs}
	}

	entryIdentity := entryIdentityOf(mods, entryPath)
	ordered := module.TopoSort(mods, entryIdentity)

	inputs := make([]types.ModuleInput, len(ordered))
	for i, m := range ordered {
		inputs[i] = types.ModuleInput{Identity: m.Identity, File: m.File}
	}

	t1 := time.Now()
	program, errs := types.Check(inputs, targetCfg)
	timings.Check = time.Since(t1)
	if errs.HasErrors() {
		return Result{Errors: errs}
	}
	if cfg.Mode == ModeTypeCheckOnly {
		timings.Total = time.Since(start)
		return Result{Artifacts: &Artifacts{Program: program, Timings: timings}}
	}

	mainFn, ok := program.Items.Fn("main")
	if !ok {
		return Result{Errors: errors.List{errors.New(errors.LNK003, errors.PhaseLink,
			"no function named \"main\" was found", errors.ZeroSpan())}}
	}

	t2 := time.Now()
	monomorphizer := mono.New(program.Items)
	if len(mainFn.SizeParams) == 0 {
		_, errs = monomorphizer.Instantiate(mainFn, nil)
	} else {
		errs = errors.List{errors.New(errors.GEN001, errors.PhaseGeneric,
			"entry function \"main\" may not declare size parameters", mainFn.Span())}
	}
	timings.Mono = time.Since(t2)
	if errs.HasErrors() {
		return Result{Errors: errs}
	}

	t3 := time.Now()
	builder := tirbuild.NewBuilder(targetCfg, program.Items)
	linker := link.New()
	for _, inst := range monomorphizer.Instances() {
		ops := builder.BuildFunction(inst.Symbol, inst.Fn, inst.Bindings)
		linker.Add(link.Unit{Symbol: inst.Symbol, Ops: ops})
	}
	body, linkErrs := linker.Link(mono.Symbol(mainFn, nil))
	timings.Build = time.Since(t3)
	if linkErrs.HasErrors() {
		return Result{Errors: linkErrs}
	}
	program2 := link.Assemble(mono.Symbol(mainFn, nil), body)

	if gotTier, maxTier := tir.MaxTier(program2), targetCfg.TierCeiling(); int(gotTier) > int(maxTier) {
		return Result{Errors: errors.List{errors.New(errors.TGT002, errors.PhaseTarget,
			fmt.Sprintf("program requires tier %d, target %q has ceiling %d", gotTier, targetCfg.Name, maxTier),
			errors.ZeroSpan())}}
	}

	art := &Artifacts{Program: program, TIR: program2}

	t4 := time.Now()
	switch targetCfg.Family() {
	case target.FamilyStack, target.FamilyKernel:
		backend := lower.NewStackLowering(targetCfg.Name)
		art.StackText = backend.Lower(program2)
		art.OutputExt = backend.OutputExtension()
	case target.FamilyRegister:
		conv := lir.NewConverter()
		lops := conv.Convert(program2)
		backend := lower.NewRegisterLowering(targetCfg.Name)
		art.RegisterText = backend.Lower(lops)
		art.OutputExt = backend.OutputExtension()
		if cfg.EmitCosts {
			rm := cost.NewRegisterModel()
			art.Cycles, art.MemAccesses = rm.EstimateLIR(lops)
		}
	case target.FamilyTree:
		backend := lower.NewTreeLowering(targetCfg.Name)
		art.TreeNoun = backend.Lower(program2)
		art.TreeBytes = lower.Serialize(art.TreeNoun)
		art.OutputExt = backend.OutputExtension()
	}
	timings.Lower = time.Since(t4)

	if cfg.EmitCosts && targetCfg.Family() == target.FamilyStack {
		sm := cost.NewStackModel(attestationRate(targetCfg))
		art.Profile = sm.Estimate(program2, uint64(len(art.StackText)))
	}
	if cfg.EmitCosts && targetCfg.Family() == target.FamilyKernel {
		cm := cost.NewCycleModel()
		art.Cycles = cm.Estimate(program2)
	}

	timings.Total = time.Since(start)
	art.Timings = timings
	return Result{Artifacts: art}
}

func attestationRate(cfg *target.Config) uint64 {
	if cfg.Hash.DigestWidth > 0 {
		return 1
	}
	return 0
}

func entryIdentityOf(mods map[string]*module.Module, entryPath string) string {
	for id, m := range mods {
		if m.FilePath == entryPath {
			return id
		}
	}
	// Fall back to whichever module has no incoming Uses reference from
	// any other module — the root of the DAG.
	referenced := map[string]bool{}
	for _, m := range mods {
		for _, u := range m.Uses {
			referenced[u] = true
		}
	}
	for id := range mods {
		if !referenced[id] {
			return id
		}
	}
	return ""
}
