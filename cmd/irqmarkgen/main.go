// Command irqmarkgen writes marker implementations for types carrying an
// //irqmask:derive directive. It is meant to run from go:generate:
//
//	//go:generate go run irqmask/cmd/irqmarkgen
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/tools/go/packages"

	"irqmask/internal/derive"
)

var (
	output  = flag.String("output", derive.DefaultOutput, "Name of the generated file in each package directory")
	report  = flag.String("report", "", "Write a JSON report of derived types to this file")
	tags    = flag.String("tags", "", "Comma-separated build tags used when loading packages")
	stdout  = flag.Bool("stdout", false, "Print generated code instead of writing files")
	verbose = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irqmarkgen [flags] [packages]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.ContainsRune(*output, filepath.Separator) {
		fmt.Fprintf(os.Stderr, "Error: -output must be a file name, not a path: %s\n", *output)
		os.Exit(1)
	}

	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	pkgs, err := load(patterns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var reports []*derive.Report
	for _, pkg := range pkgs {
		r, err := generate(pkg)
		if errors.Is(err, derive.ErrNoDirective) {
			if *verbose {
				fmt.Printf("%s: no directives\n", pkg.PkgPath)
			}
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", pkg.PkgPath, err)
			os.Exit(1)
		}
		reports = append(reports, r)
	}

	if *report != "" {
		if err := writeReport(*report, reports); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to write report: %v\n", err)
			os.Exit(1)
		}
	}
}

// load type-checks the packages matching patterns. Errors located in a
// previously generated file are tolerated; it is about to be replaced.
func load(patterns []string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
	}
	if *tags != "" {
		cfg.BuildFlags = []string{"-tags=" + *tags}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages match %s", strings.Join(patterns, " "))
	}

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError && inOutput(e.Pos) {
				continue
			}
			return nil, fmt.Errorf("%s: %v", pkg.PkgPath, e)
		}
	}
	return pkgs, nil
}

func inOutput(pos string) bool {
	file, _, _ := strings.Cut(pos, ":")
	return filepath.Base(file) == *output
}

func generate(pkg *packages.Package) (*derive.Report, error) {
	src, r, err := derive.Generate(&derive.Package{
		Path:  pkg.PkgPath,
		Fset:  pkg.Fset,
		Files: pkg.Syntax,
		Types: pkg.Types,
	}, *output)
	if err != nil {
		return nil, err
	}

	if *stdout {
		if _, err := os.Stdout.Write(src); err != nil {
			return nil, err
		}
		return r, nil
	}

	dir, err := packageDir(pkg)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, *output)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return nil, err
	}
	if *verbose {
		fmt.Printf("%s: wrote %s (%d types)\n", pkg.PkgPath, path, len(r.Types))
	}
	return r, nil
}

func packageDir(pkg *packages.Package) (string, error) {
	files := pkg.GoFiles
	if len(files) == 0 {
		files = pkg.CompiledGoFiles
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no Go files")
	}
	return filepath.Dir(files[0]), nil
}

func writeReport(path string, reports []*derive.Report) error {
	data, err := sonnet.Marshal(reports)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
