package notebook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reactive-notebook/nbcore/api"
)

// GenerateFileContents renders a Serialization back to Python source,
// the round-trip writer side of the AST-shape grammar Parse recognizes.
// Indentation and blank-line spacing are normalized rather than
// byte-for-byte preserved.
func GenerateFileContents(s *Serialization) string {
	var b strings.Builder

	if s.Header.Text != "" {
		b.WriteString(s.Header.Text)
		if !strings.HasSuffix(s.Header.Text, "\n") {
			b.WriteString("\n")
		}
	}

	b.WriteString("import marimo\n\n")

	if s.HasVersion {
		fmt.Fprintf(&b, "__generated_with = %q\n\n", s.Version)
	}

	b.WriteString("app = marimo.App(")
	b.WriteString(formatKwargs(appOptionsKV(s.App)))
	b.WriteString(")\n\n")

	if s.Setup != nil {
		b.WriteString("with app.setup:\n")
		b.WriteString(indentBody(s.Setup.Code))
		b.WriteString("\n\n")
	}

	for _, cell := range s.Cells {
		b.WriteString(renderCell(cell))
		b.WriteString("\n\n")
	}

	b.WriteString(`if __name__ == "__main__":` + "\n")
	b.WriteString("    app.run()\n")

	return b.String()
}

type kvPair struct{ key, src string }

func appOptionsKV(o AppOptions) []kvPair {
	var kv []kvPair
	if o.Width != "" {
		kv = append(kv, kvPair{"width", strconv.Quote(o.Width)})
	}
	if o.LayoutFile != "" {
		kv = append(kv, kvPair{"layout_file", strconv.Quote(o.LayoutFile)})
	}
	if o.CSSFile != "" {
		kv = append(kv, kvPair{"css_file", strconv.Quote(o.CSSFile)})
	}
	for _, e := range o.Extras {
		kv = append(kv, kvPair{e.Key, literalSource(e.Value)})
	}
	return kv
}

func cellOptionsKV(o api.CellOptions) []kvPair {
	var kv []kvPair
	if o.Disabled {
		kv = append(kv, kvPair{"disabled", "True"})
	}
	if o.HideCode {
		kv = append(kv, kvPair{"hide_code", "True"})
	}
	if o.Column != nil {
		kv = append(kv, kvPair{"column", strconv.Itoa(*o.Column)})
	}
	for _, e := range o.Extras {
		kv = append(kv, kvPair{e.Key, literalSource(e.Value)})
	}
	return kv
}

func literalSource(lit api.Literal) string {
	switch lit.Kind {
	case api.LiteralString:
		return strconv.Quote(lit.Str)
	case api.LiteralNumber:
		return strconv.FormatFloat(lit.Num, 'g', -1, 64)
	case api.LiteralBool:
		if lit.Bool {
			return "True"
		}
		return "False"
	default:
		return "None"
	}
}

func formatKwargs(kv []kvPair) string {
	parts := make([]string, 0, len(kv))
	for _, p := range kv {
		parts = append(parts, p.key+"="+p.src)
	}
	return strings.Join(parts, ", ")
}

func renderCell(c CellDef) string {
	var b strings.Builder
	switch c.Kind {
	case KindUnparsable:
		fmt.Fprintf(&b, "app._unparsable_cell(\n    %s,\n    name=%s,\n)", strconv.Quote(c.Code), strconv.Quote(c.Name))
		return b.String()
	case KindFunctionCell:
		b.WriteString(decoratorLine("app.function", c.Options))
		b.WriteString(c.Code)
		return b.String()
	case KindClassCell:
		b.WriteString(decoratorLine("app.class_definition", c.Options))
		b.WriteString(c.Code)
		return b.String()
	default:
		b.WriteString(decoratorLine("app.cell", c.Options))
		fmt.Fprintf(&b, "def %s():\n", cellFuncName(c.Name))
		b.WriteString(indentBody(c.Code))
		b.WriteString("\n    return")
		return b.String()
	}
}

func cellFuncName(name string) string {
	if name == "" {
		return "_"
	}
	return name
}

func decoratorLine(name string, opts api.CellOptions) string {
	kv := cellOptionsKV(opts)
	if len(kv) == 0 {
		return "@" + name + "\n"
	}
	return "@" + name + "(" + formatKwargs(kv) + ")\n"
}

func indentBody(code string) string {
	lines := strings.Split(strings.TrimRight(code, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			continue
		}
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
