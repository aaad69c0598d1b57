package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/tridentlang/trident/internal/ast"
	"github.com/tridentlang/trident/internal/errors"
	"github.com/tridentlang/trident/internal/manifest"
	"github.com/tridentlang/trident/internal/parser"
	"github.com/tridentlang/trident/internal/pipeline"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag    = flag.Bool("version", false, "Print version information")
		helpFlag       = flag.Bool("help", false, "Show help")
		targetFlag     = flag.String("target", "", "Target VM name (overrides trident.toml)")
		osFlag         = flag.String("os", "", "Target OS overlay name (overrides trident.toml)")
		emitCostsFlag  = flag.Bool("emit-costs", false, "Print the estimated cost profile after compiling")
		typeCheckFlag  = flag.Bool("check", false, "Type-check only, do not emit code")
		jsonErrorsFlag = flag.Bool("json-errors", false, "Emit diagnostics as JSON instead of colored text")
		outFlag        = flag.String("o", "", "Output file path (default: <entry-basename>.<ext>)")
		dumpASTFlag    = flag.Bool("dump-ast", false, "Print the entry file re-rendered from its parsed AST, then exit")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	switch flag.Arg(0) {
	case "compile":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing project or file argument\n", red("Error"))
			fmt.Println("Usage: trident compile <trident.toml | file.tri> [flags]")
			os.Exit(1)
		}
		// Flags may also follow the entry argument.
		entryArg := flag.Arg(1)
		flag.CommandLine.Parse(flag.Args()[2:])
		if *dumpASTFlag {
			dumpAST(entryArg)
			return
		}
		runCompile(entryArg, *targetFlag, *osFlag, *emitCostsFlag, *typeCheckFlag, *jsonErrorsFlag, *outFlag)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), flag.Arg(0))
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("Trident %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
}

func printHelp() {
	fmt.Println(bold("Trident — a security-first compiler for provable virtual machines"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  trident compile <trident.toml | file.tri> [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func runCompile(path, targetName, osName string, emitCosts, checkOnly, jsonErrors bool, outPath string) {
	entry := path
	root := filepath.Dir(path)
	vmName, overlayOS := targetName, osName

	if strings.HasSuffix(path, ".toml") {
		m, errs := manifest.Load(path)
		if report(errs, jsonErrors) {
			os.Exit(1)
		}
		root = filepath.Dir(path)
		entry = filepath.Join(root, m.Project.Entry)
		if vmName == "" {
			vmName = m.Project.VM
		}
		if overlayOS == "" {
			overlayOS = m.Project.OS
		}
	}
	if vmName == "" {
		fmt.Fprintf(os.Stderr, "%s: no target VM specified (pass -target or set [project].vm in trident.toml)\n", red("Error"))
		os.Exit(1)
	}

	mode := pipeline.ModeCompile
	if checkOnly {
		mode = pipeline.ModeTypeCheckOnly
	}

	cfg := pipeline.Config{
		Mode:        mode,
		SourceRoot:  root,
		StdRoot:     filepath.Join(root, "std"),
		ExtRoot:     filepath.Join(root, "ext"),
		TargetsRoot: root,
		VMName:      vmName,
		OSName:      overlayOS,
		EmitCosts:   emitCosts,
	}

	result := pipeline.Compile(entry, cfg)
	if report(result.Errors, jsonErrors) {
		os.Exit(1)
	}
	if checkOnly {
		fmt.Println(green("OK") + ": no type errors")
		return
	}

	art := result.Artifacts
	out := outPath
	if out == "" {
		out = strings.TrimSuffix(filepath.Base(entry), filepath.Ext(entry)) + "." + art.OutputExt
	}
	if err := writeOutput(out, art); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	fmt.Printf("%s %s (%s)\n", green("Compiled"), out, art.Timings.Total)

	if emitCosts {
		printCosts(art)
	}
}

// dumpAST parses path (a direct .tri entry file) and re-renders it from
// the parsed AST, a debugging aid for the parser's round-trip law
// (spec.md §8: parse(Print(parse(src))) == parse(src)).
func dumpAST(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	p := parser.New(string(src), path)
	file, errs := p.ParseFile()
	if report(errs, false) {
		os.Exit(1)
	}
	fmt.Print(ast.Print(file))
}

func writeOutput(path string, art *pipeline.Artifacts) error {
	switch {
	case art.StackText != nil:
		return os.WriteFile(path, []byte(strings.Join(art.StackText, "\n")+"\n"), 0o644)
	case art.RegisterText != nil:
		return os.WriteFile(path, []byte(strings.Join(art.RegisterText, "\n")+"\n"), 0o644)
	case art.TreeBytes != nil:
		return os.WriteFile(path, art.TreeBytes, 0o644)
	default:
		return fmt.Errorf("no output was produced for this target family")
	}
}

func printCosts(art *pipeline.Artifacts) {
	fmt.Println(bold("Cost estimate:"))
	if art.Cycles > 0 {
		fmt.Printf("  cycles: %d\n", art.Cycles)
	}
	if art.MemAccesses > 0 {
		fmt.Printf("  memory accesses: %d\n", art.MemAccesses)
	}
	p := art.Profile
	if p.Attestation > 0 || p.Fields != [6]uint64{} {
		fmt.Printf("  processor=%d hash=%d u32=%d op_stack=%d ram=%d jump_stack=%d attestation=%d\n",
			p.Fields[0], p.Fields[1], p.Fields[2], p.Fields[3], p.Fields[4], p.Fields[5], p.Attestation)
	}
}

// report prints diagnostics and returns true if any were error-severity.
func report(errs errors.List, asJSON bool) bool {
	for _, e := range errs {
		if asJSON {
			j, _ := e.ToJSON(false)
			fmt.Println(j)
		} else {
			fmt.Println(e.Pretty())
		}
	}
	return errs.HasErrors()
}
