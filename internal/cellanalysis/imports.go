package cellanalysis

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/reactive-notebook/nbcore/api"
)

// handleImport records the bindings, ImportData and imported_namespaces
// entries produced by one `import ...` / `from ... import ...` statement
// (spec.md §4.3 "Import introspection").
func (w *walker) handleImport(n *sitter.Node, bound map[string]bool) {
	for _, imp := range parseImportBindings(n, w.source) {
		w.result.addDef(string(imp.Definition), api.KindImport)
		bound[string(imp.Definition)] = true
		w.result.imports = append(w.result.imports, imp)
	}
	for _, ns := range importedNamespaceTokens(n, w.source) {
		w.result.importedNamespaces[api.Name(ns)] = true
	}
}

// parseImportBindings extracts the ImportData produced by one import
// statement, independent of scope — used both at direct scope and when
// resolving imports nested inside a function/class body (since an import
// still binds a name even inside a nested scope's own namespace).
func parseImportBindings(n *sitter.Node, source []byte) []api.ImportData {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "import_statement":
		var out []api.ImportData
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "dotted_name":
				mod := text(c, source)
				out = append(out, api.ImportData{
					Definition: api.Name(firstComponent(mod)),
					Module:     api.Name(mod),
				})
			case "aliased_import":
				name := c.ChildByFieldName("name")
				alias := c.ChildByFieldName("alias")
				mod := text(name, source)
				out = append(out, api.ImportData{
					Definition: api.Name(text(alias, source)),
					Module:     api.Name(mod),
				})
			}
		}
		return out

	case "import_from_statement":
		moduleNode := n.ChildByFieldName("module_name")
		module, level := parseModuleRef(moduleNode, source)

		var out []api.ImportData
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "dotted_name":
				if c == moduleNode {
					continue
				}
				sym := text(c, source)
				out = append(out, api.ImportData{
					Definition:     api.Name(sym),
					ImportedSymbol: api.Name(sym),
					Module:         api.Name(module),
					ImportLevel:    level,
				})
			case "aliased_import":
				name := c.ChildByFieldName("name")
				alias := c.ChildByFieldName("alias")
				out = append(out, api.ImportData{
					Definition:     api.Name(text(alias, source)),
					ImportedSymbol: api.Name(text(name, source)),
					Module:         api.Name(module),
					ImportLevel:    level,
				})
			case "wildcard_import":
				// Star imports can't be statically resolved to specific
				// names; nothing is recorded as a binding.
			}
		}
		return out
	}
	return nil
}

func parseModuleRef(n *sitter.Node, source []byte) (module string, level int) {
	if n == nil {
		return "", 0
	}
	if n.Type() == "relative_import" {
		raw := text(n, source)
		level = len(raw) - len(strings.TrimLeft(raw, "."))
		module = strings.TrimLeft(raw, ".")
		return module, level
	}
	return text(n, source), 0
}

// importedNamespaceTokens returns the top-level module token(s) an import
// statement contributes to imported_namespaces — which, unlike defs/refs,
// always includes `_`-prefixed names (spec.md §3).
func importedNamespaceTokens(n *sitter.Node, source []byte) []string {
	var out []string
	switch n.Type() {
	case "import_statement":
		for _, c := range namedChildren(n) {
			switch c.Type() {
			case "dotted_name":
				out = append(out, firstComponent(text(c, source)))
			case "aliased_import":
				name := c.ChildByFieldName("name")
				out = append(out, firstComponent(text(name, source)))
			}
		}
	case "import_from_statement":
		moduleNode := n.ChildByFieldName("module_name")
		module, _ := parseModuleRef(moduleNode, source)
		if module != "" {
			out = append(out, firstComponent(module))
		}
	}
	return out
}

func firstComponent(dotted string) string {
	if i := strings.IndexByte(dotted, '.'); i >= 0 {
		return dotted[:i]
	}
	return dotted
}
