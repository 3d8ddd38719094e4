package notebook

import (
	"context"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/reactive-notebook/nbcore/api"
	"github.com/reactive-notebook/nbcore/internal/pyast"
)

// Parse recognizes the strict top-level shape of spec.md §4.2 over a
// notebook's raw source, emitting a Violation for every statement that
// doesn't match the grammar but continuing to process the rest. Returns
// api.MarimoFileError if no marimo import or app instantiation is found at
// all — the minimum skeleton required to call something a notebook.
func Parse(ctx context.Context, source []byte) (*Serialization, error) {
	tree, err := pyast.Parse(ctx, source)
	if err != nil {
		return nil, err
	}

	if pyast.HasError(tree.RootNode()) {
		if scanned, scanErr := scanFallback(ctx, source); scanErr == nil {
			return scanned, nil
		}
		// The scanner couldn't recover either (e.g. a broken preamble); fall
		// through and run the strict validator over tree-sitter's own
		// ERROR-node recovery on a best-effort basis.
	}

	stmts := pyast.NamedChildren(tree.RootNode())

	s := &Serialization{}

	importIdx := findMarimoImport(stmts, source)
	if importIdx < 0 {
		return nil, api.MarimoFileError{Reason: "no `import marimo` statement found"}
	}
	if importIdx > 0 {
		s.Header = Header{Text: joinSpan(stmts[:importIdx], source)}
	}

	i := importIdx + 1

	if i < len(stmts) && isVersionAssignment(stmts[i], source) {
		s.Version = stringLiteralValue(stmts[i].ChildByFieldName("right"), source)
		s.HasVersion = true
		i++
	} else {
		s.Violations = append(s.Violations, violationAt(stmts, i, source,
			"Expected `__generated_with` assignment for marimo version number."))
	}

	appIdx := -1
	for j := i; j < len(stmts); j++ {
		if isAppAssignment(stmts[j], source) {
			appIdx = j
			break
		}
	}
	if appIdx < 0 {
		return nil, api.MarimoFileError{Reason: "no `app = marimo.App(...)` instantiation found"}
	}
	for j := i; j < appIdx; j++ {
		s.Violations = append(s.Violations, violationAt(stmts, j, source, "Unexpected statement before app instantiation."))
	}
	s.App = parseAppOptions(stmts[appIdx], source, &s.Violations)
	i = appIdx + 1

	if i < len(stmts) && isSetupWith(stmts[i], source) {
		cell, violations := parseSetupCell(stmts[i], source)
		s.Setup = cell
		s.Violations = append(s.Violations, violations...)
		i++
	}

	runGuardIdx := -1
	for j := len(stmts) - 1; j >= i; j-- {
		if isRunGuard(stmts[j], source) {
			runGuardIdx = j
			break
		}
	}
	if runGuardIdx < 0 {
		s.Violations = append(s.Violations, api.Violation{
			Description: "Expected `if __name__ == \"__main__\": app.run()` run guard.",
		})
		runGuardIdx = len(stmts)
	}

	nextID := 0
	for j := i; j < runGuardIdx; j++ {
		cell, ok, violations := classifyCell(stmts[j], source, nextID)
		s.Violations = append(s.Violations, violations...)
		if ok {
			s.Cells = append(s.Cells, cell)
			nextID++
		}
	}

	s.Valid = true
	return s, nil
}

func joinSpan(stmts []*sitter.Node, source []byte) string {
	if len(stmts) == 0 {
		return ""
	}
	start := stmts[0].StartByte()
	end := stmts[len(stmts)-1].EndByte()
	return string(source[start:end])
}

func violationAt(stmts []*sitter.Node, idx int, source []byte, msg string) api.Violation {
	if idx < len(stmts) {
		p := pyast.StartPos(stmts[idx])
		return api.Violation{Description: msg, Lineno: p.Line, ColOffset: p.Col}
	}
	return api.Violation{Description: msg}
}

func findMarimoImport(stmts []*sitter.Node, source []byte) int {
	for i, s := range stmts {
		if s.Type() != "import_statement" {
			continue
		}
		for _, c := range pyast.NamedChildren(s) {
			switch c.Type() {
			case "dotted_name":
				if pyast.Text(c, source) == "marimo" {
					return i
				}
			case "aliased_import":
				if name := c.ChildByFieldName("name"); name != nil && pyast.Text(name, source) == "marimo" {
					return i
				}
			}
		}
	}
	return -1
}

func isVersionAssignment(n *sitter.Node, source []byte) bool {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	assign := n.NamedChild(0)
	if assign.Type() != "assignment" {
		return false
	}
	left := assign.ChildByFieldName("left")
	return left != nil && left.Type() == "identifier" && pyast.Text(left, source) == "__generated_with"
}

func stringLiteralValue(n *sitter.Node, source []byte) string {
	if n == nil || n.Type() != "string" {
		return ""
	}
	for _, c := range pyast.NamedChildren(n) {
		if c.Type() == "string_content" {
			return pyast.Text(c, source)
		}
	}
	return ""
}

// isAppAssignment matches `app = marimo.App(...)`.
func isAppAssignment(n *sitter.Node, source []byte) bool {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	assign := n.NamedChild(0)
	if assign.Type() != "assignment" {
		return false
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" || pyast.Text(left, source) != "app" {
		return false
	}
	right := assign.ChildByFieldName("right")
	if right == nil || right.Type() != "call" {
		return false
	}
	fn := right.ChildByFieldName("function")
	return fn != nil && fn.Type() == "attribute" && pyast.Text(fn, source) == "marimo.App"
}

func parseAppOptions(n *sitter.Node, source []byte, violations *[]api.Violation) AppOptions {
	assign := n.NamedChild(0)
	call := assign.ChildByFieldName("right")
	kv, _, v := evalKwargs(call.ChildByFieldName("arguments"), source)
	*violations = append(*violations, v...)

	opts := AppOptions{}
	for _, kv := range kv {
		switch kv.Key {
		case "width":
			opts.Width = kv.Value.Str
		case "layout_file":
			opts.LayoutFile = kv.Value.Str
		case "css_file":
			opts.CSSFile = kv.Value.Str
		default:
			opts.Extras = append(opts.Extras, kv)
		}
	}
	return opts
}

// evalKwargs extracts literal keyword arguments from a call's arguments
// node into a flat KV list, recording a violation for any non-literal
// value (spec.md §4.2: "A value that is not a literal constant is a
// violation and the kwarg is skipped").
func evalKwargs(args *sitter.Node, source []byte) (kv []api.KV, extras []api.KV, violations []api.Violation) {
	if args == nil {
		return nil, nil, nil
	}
	for _, c := range pyast.NamedChildren(args) {
		if c.Type() != "keyword_argument" {
			continue
		}
		name := c.ChildByFieldName("name")
		value := c.ChildByFieldName("value")
		key := pyast.Text(name, source)
		lit, ok := literalOf(value, source)
		if !ok {
			p := pyast.StartPos(c)
			violations = append(violations, api.Violation{
				Description: "Keyword argument `" + key + "` is not a literal constant.",
				Lineno:      p.Line,
				ColOffset:   p.Col,
			})
			continue
		}
		kv = append(kv, api.KV{Key: key, Value: lit})
	}
	return kv, kv, violations
}

func literalOf(n *sitter.Node, source []byte) (api.Literal, bool) {
	if n == nil {
		return api.Literal{}, false
	}
	switch n.Type() {
	case "string":
		return api.Literal{Kind: api.LiteralString, Str: stringLiteralValue(n, source)}, true
	case "integer", "float":
		f, err := strconv.ParseFloat(pyast.Text(n, source), 64)
		if err != nil {
			return api.Literal{}, false
		}
		return api.Literal{Kind: api.LiteralNumber, Num: f}, true
	case "true", "false":
		return api.Literal{Kind: api.LiteralBool, Bool: n.Type() == "true"}, true
	case "none":
		return api.Literal{Kind: api.LiteralNone}, true
	}
	return api.Literal{}, false
}

func isSetupWith(n *sitter.Node, source []byte) bool {
	if n.Type() != "with_statement" {
		return false
	}
	for _, clause := range pyast.NamedChildren(n) {
		if clause.Type() != "with_clause" {
			continue
		}
		for _, item := range pyast.NamedChildren(clause) {
			if item.Type() != "with_item" {
				continue
			}
			v := item.ChildByFieldName("value")
			if v == nil && item.NamedChildCount() > 0 {
				v = item.NamedChild(0)
			}
			if v == nil {
				continue
			}
			switch v.Type() {
			case "attribute":
				if pyast.Text(v, source) == "app.setup" {
					return true
				}
			case "call":
				fn := v.ChildByFieldName("function")
				if fn != nil && pyast.Text(fn, source) == "app.setup" {
					return true
				}
			}
		}
	}
	return false
}

func parseSetupCell(n *sitter.Node, source []byte) (*CellDef, []api.Violation) {
	var violations []api.Violation
	var kv []api.KV
	for _, clause := range pyast.NamedChildren(n) {
		if clause.Type() != "with_clause" {
			continue
		}
		for _, item := range pyast.NamedChildren(clause) {
			if item.Type() != "with_item" {
				continue
			}
			v := item.ChildByFieldName("value")
			if v != nil && v.Type() == "call" {
				k, _, vio := evalKwargs(v.ChildByFieldName("arguments"), source)
				kv = append(kv, k...)
				violations = append(violations, vio...)
			}
		}
	}
	opts := optionsFromKV(kv)

	body := n.ChildByFieldName("body")
	code := pyast.ExtractBody(body, source, pyast.StripPass)

	return &CellDef{
		CellId:  api.SetupCellName,
		Name:    "setup",
		Code:    code,
		Options: opts,
		Kind:    KindOrdinaryCell,
	}, violations
}

func optionsFromKV(kv []api.KV) api.CellOptions {
	opts := api.CellOptions{}
	for _, pair := range kv {
		switch pair.Key {
		case "disabled":
			opts.Disabled = pair.Value.Bool
		case "hide_code":
			opts.HideCode = pair.Value.Bool
		case "column":
			if pair.Value.Kind == api.LiteralNumber {
				n := int(pair.Value.Num)
				opts.Column = &n
			}
		default:
			opts.Extras = append(opts.Extras, pair)
		}
	}
	return opts
}

func isRunGuard(n *sitter.Node, source []byte) bool {
	if n.Type() != "if_statement" {
		return false
	}
	cond := n.ChildByFieldName("condition")
	return cond != nil && strings.Contains(pyast.Text(cond, source), "__name__")
}

// classifyCell recognizes one of the four cell syntaxes of spec.md §4.2:
// a decorated function (@app.cell / @app.function), a decorated class
// (@app.class_definition), or an `app._unparsable_cell(...)` call. Anything
// else produces a violation and is skipped (ok=false).
func classifyCell(n *sitter.Node, source []byte, index int) (CellDef, bool, []api.Violation) {
	id := api.CellId(strconv.Itoa(index))

	if n.Type() == "decorated_definition" {
		return classifyDecorated(n, source, id)
	}
	if isUnparsableCellCall(n, source) {
		cell, ok := parseUnparsableCell(n, source, id)
		return cell, ok, nil
	}

	p := pyast.StartPos(n)
	return CellDef{}, false, []api.Violation{{
		Description: "Statement does not match any recognized cell shape.",
		Lineno:      p.Line,
		ColOffset:   p.Col,
	}}
}

func classifyDecorated(n *sitter.Node, source []byte, id api.CellId) (CellDef, bool, []api.Violation) {
	var decoratorName string
	var decoratorCall *sitter.Node
	var def *sitter.Node
	for _, c := range pyast.NamedChildren(n) {
		switch c.Type() {
		case "decorator":
			target := c.NamedChild(0)
			if target == nil {
				continue
			}
			if target.Type() == "call" {
				decoratorCall = target
				target = target.ChildByFieldName("function")
			}
			decoratorName = pyast.Text(target, source)
		case "function_definition", "class_definition":
			def = c
		}
	}
	if def == nil {
		p := pyast.StartPos(n)
		return CellDef{}, false, []api.Violation{{Description: "Decorated statement has no function/class body.", Lineno: p.Line, ColOffset: p.Col}}
	}

	var kv []api.KV
	var violations []api.Violation
	if decoratorCall != nil {
		k, _, v := evalKwargs(decoratorCall.ChildByFieldName("arguments"), source)
		kv = k
		violations = v
	}
	opts := optionsFromKV(kv)
	name := ""
	if nameNode := def.ChildByFieldName("name"); nameNode != nil {
		name = pyast.Text(nameNode, source)
	}

	switch decoratorName {
	case "app.cell":
		code := pyast.ExtractBody(def.ChildByFieldName("body"), source, pyast.StripReturn)
		return CellDef{CellId: id, Name: name, Code: code, Options: opts, Kind: KindOrdinaryCell}, true, violations
	case "app.function":
		code := pyast.ExtractFullSpan(n, source)
		return CellDef{CellId: id, Name: name, Code: code, Options: opts, Kind: KindFunctionCell}, true, violations
	case "app.class_definition":
		code := pyast.ExtractFullSpan(n, source)
		return CellDef{CellId: id, Name: name, Code: code, Options: opts, Kind: KindClassCell}, true, violations
	}

	p := pyast.StartPos(n)
	return CellDef{}, false, append(violations, api.Violation{
		Description: "Unrecognized decorator `" + decoratorName + "`.",
		Lineno:      p.Line,
		ColOffset:   p.Col,
	})
}

func isUnparsableCellCall(n *sitter.Node, source []byte) bool {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	call := n.NamedChild(0)
	if call.Type() != "call" {
		return false
	}
	fn := call.ChildByFieldName("function")
	return fn != nil && pyast.Text(fn, source) == "app._unparsable_cell"
}

func parseUnparsableCell(n *sitter.Node, source []byte, id api.CellId) (CellDef, bool) {
	call := n.NamedChild(0)
	args := call.ChildByFieldName("arguments")
	var src, name string
	for i, c := range pyast.NamedChildren(args) {
		if i == 0 && c.Type() == "string" {
			src = stringLiteralValue(c, source)
		}
		if c.Type() == "keyword_argument" {
			k := c.ChildByFieldName("name")
			v := c.ChildByFieldName("value")
			if pyast.Text(k, source) == "name" {
				name = stringLiteralValue(v, source)
			}
		}
	}
	return CellDef{CellId: id, Name: name, Code: src, Kind: KindUnparsable}, true
}
