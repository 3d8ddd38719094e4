// Package cellanalysis implements the Cell Semantic Analyzer (spec.md
// §4.3): scope-aware defs/refs/deleted_refs, import introspection, and SQL
// call-site extraction, assembled into a populated api.CellImpl.
package cellanalysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/reactive-notebook/nbcore/api"
	"github.com/reactive-notebook/nbcore/internal/pyast"
	"github.com/reactive-notebook/nbcore/internal/sqlref"
)

// Analyze parses and scope-analyzes one cell's Python source, walks its SQL
// call sites, and returns a fully populated CellImpl. The caller supplies
// the cell's id and decorator-derived config; Key is the content hash used
// for cache identity (spec.md §3, §4.12).
func Analyze(ctx context.Context, id api.CellId, code string, cfg api.CellConfig) (*api.CellImpl, []api.Violation, error) {
	source := []byte(code)
	tree, err := pyast.Parse(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	root := tree.RootNode()

	cell := api.NewCellImpl(id, code, contentKey(code), api.LangPython)
	cell.Config = cfg

	stmts := pyast.NamedChildren(root)
	scope := analyzeStatements(stmts, source)

	for name := range scope.defs {
		cell.Defs[name] = true
	}
	for name := range scope.refs {
		cell.Refs[name] = true
	}
	for name := range scope.deletedRefs {
		cell.DeletedRefs[name] = true
	}
	for name := range scope.importedNamespaces {
		cell.ImportedNamespaces[name] = true
	}
	for _, imp := range scope.imports {
		imp := imp
		cell.Imports[imp] = true
	}

	for _, ev := range scope.bindings {
		vd := api.VariableData{Kind: ev.kind, Language: api.LangPython}
		if ev.kind == api.KindImport {
			for _, imp := range scope.imports {
				if imp.Definition == ev.name {
					imp := imp
					vd.Import = &imp
					break
				}
			}
		}
		cell.VariableData[ev.name] = append(cell.VariableData[ev.name], vd)
	}

	cell.ImportWorkspace.IsImportBlock = isImportBlock(stmts)

	var violations []api.Violation
	sqlLanguage := len(stmts) > 0
	for _, call := range findSQLCalls(stmts, source) {
		cell.SQLs = append(cell.SQLs, call.Text)
		analyzeSQLCall(cell, call.Text)
	}
	if sqlLanguage && allStatementsAreSQLCalls(stmts, source) {
		cell.Language = api.LangSQL
	}

	return cell, violations, nil
}

// contentKey hashes a cell's source text for cache identity (spec.md
// §4.12's is_cell_cached contract keys on this, not on cell_id).
func contentKey(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// isImportBlock reports whether every top-level statement in a cell is an
// import (spec.md §4.3's import_workspace.is_import_block).
func isImportBlock(stmts []*sitter.Node) bool {
	if len(stmts) == 0 {
		return false
	}
	for _, s := range stmts {
		switch s.Type() {
		case "import_statement", "import_from_statement", "comment":
		default:
			return false
		}
	}
	return true
}

// allStatementsAreSQLCalls reports whether every significant top-level
// statement is a `.sql(...)`/`.execute(...)` call (spec.md §4.3's language
// determination: language=sql iff the whole cell is SQL calls).
func allStatementsAreSQLCalls(stmts []*sitter.Node, source []byte) bool {
	found := false
	for _, s := range stmts {
		stmt := s
		if stmt.Type() == "expression_statement" && stmt.NamedChildCount() == 1 {
			stmt = stmt.NamedChild(0)
		}
		switch stmt.Type() {
		case "comment":
			continue
		case "call":
			if _, ok := sqlCallArgument(stmt, source); ok {
				found = true
				continue
			}
			return false
		case "assignment":
			right := stmt.ChildByFieldName("right")
			if right != nil && right.Type() == "call" {
				if _, ok := sqlCallArgument(right, source); ok {
					found = true
					continue
				}
			}
			return false
		default:
			return false
		}
	}
	return found
}

// analyzeSQLCall extracts CREATE TABLE/VIEW/SCHEMA definitions and
// FROM/JOIN references from one captured SQL statement and merges them into
// the cell (spec.md §4.3, §4.4).
func analyzeSQLCall(cell *api.CellImpl, sql string) {
	for _, created := range sqlref.ExtractCreated(sql) {
		name := api.Name(created.Name)
		cell.Defs[name] = true
		qualified := api.Name(created.Qualified)
		cell.VariableData[name] = append(cell.VariableData[name], api.VariableData{
			Kind:          created.Kind,
			Language:      api.LangSQL,
			QualifiedName: qualified,
		})
		if created.Qualified != "" {
			cell.SQLRefs[api.Name(created.Qualified)] = api.ParseSQLRef(created.Qualified)
		}
	}

	defined := map[string]bool{}
	for _, created := range sqlref.ExtractCreated(sql) {
		defined[created.Name] = true
		if created.Qualified != "" {
			defined[created.Qualified] = true
		}
	}

	for _, ref := range sqlref.ExtractReferences(sql) {
		if defined[ref] {
			continue
		}
		parsed := api.ParseSQLRef(ref)
		cell.SQLRefs[api.Name(ref)] = parsed
		last := parsed.Full[len(parsed.Full)-1]
		cell.Refs[last] = true
		if len(parsed.Full) > 1 {
			// The full dotted form is also a ref, keyed to match
			// cell.SQLRefs so hierarchical schema/catalog matching in
			// EdgeComputer.parentsViaRefs can find it (spec.md §4.3:
			// "c2.refs includes the dotted ref s.t").
			cell.Refs[api.Name(ref)] = true
		}
	}
}
