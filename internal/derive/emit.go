package derive

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
)

const header = "// Code generated by irqmarkgen. DO NOT EDIT.\n"

// emit renders the derive file.
func (g *generator) emit() ([]byte, error) {
	var body bytes.Buffer
	usesMarker := false

	for _, e := range g.order {
		if e.Kind == "sum" {
			fmt.Fprintf(&body, "// %s variants: %s\n\n", e.Type, strings.Join(e.Variants, ", "))
			continue
		}
		for _, impl := range e.Impls {
			if impl.Declared {
				continue
			}
			if len(impl.Checks) > 0 {
				usesMarker = true
				fmt.Fprintf(&body, "// %s: %s\n", e.Type, impl.Predicate)
				body.WriteString("func _() {\n")
				for _, c := range impl.Checks {
					fmt.Fprintf(&body, "\t%s.%s[%s]()", g.marker, c.Assert, c.Type)
					if c.Field != "" {
						fmt.Fprintf(&body, " // %s", c.Field)
					}
					body.WriteString("\n")
				}
				body.WriteString("}\n\n")
			}

			p, _ := parsePredicate(impl.Predicate)
			fmt.Fprintf(&body, "// %s declares %s %s an interrupt handler on the same execution unit.\n",
				p.Method(), e.Type, relation(p))
			fmt.Fprintf(&body, "func (%s) %s() {}\n\n", e.Type, p.Method())
		}
	}

	var out bytes.Buffer
	out.WriteString(header)
	fmt.Fprintf(&out, "\npackage %s\n\n", g.pkg.Types.Name())

	var specs []string
	if usesMarker {
		specs = append(specs, importSpec(g.marker, "marker", MarkerPath))
	}
	paths := make([]string, 0, len(g.imports))
	for path := range g.imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		specs = append(specs, importSpec(g.imports[path], g.pkgNames[path], path))
	}
	if len(specs) > 0 {
		out.WriteString("import (\n")
		for _, s := range specs {
			out.WriteString("\t" + s + "\n")
		}
		out.WriteString(")\n\n")
	}

	out.Write(body.Bytes())

	src, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("derive: formatting generated code: %w", err)
	}
	return src, nil
}

func importSpec(local, declared, path string) string {
	if local == declared {
		return fmt.Sprintf("%q", path)
	}
	return fmt.Sprintf("%s %q", local, path)
}

func relation(p Predicate) string {
	if p == Shareable {
		return "shareable with"
	}
	return "transferable to"
}
