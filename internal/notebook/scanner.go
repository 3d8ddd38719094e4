package notebook

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/reactive-notebook/nbcore/api"
	"github.com/reactive-notebook/nbcore/internal/pyast"
)

var (
	reCellDecorator  = regexp.MustCompile(`^@app\.cell\b`)
	reFuncDecorator  = regexp.MustCompile(`^@app\.function\b`)
	reClassDecorator = regexp.MustCompile(`^@app\.class_definition\b`)
	reSetupWith      = regexp.MustCompile(`^with\s+app\.setup\b`)
	reUnparsableCall = regexp.MustCompile(`^app\._unparsable_cell\(`)
	reRunGuard       = regexp.MustCompile(`^if\s+__name__\s*==`)
)

// scanBoundary is one column-0 cell-boundary token found by the line-based
// recovery scan, identified by the 0-indexed line it starts on.
type scanBoundary struct {
	startLine int
	kind      string // "cell", "function", "class", "setup", "unparsable"
}

// scanBoundaries walks source lines looking for the column-0 tokens that
// start a cell boundary, ignoring matches that fall on a comment line or
// inside a still-open triple-quoted string (spec.md §4.2's tokenizer-based
// fallback, grounded on original_source/marimo/_ast/scanner.py's
// _BoundaryDetector state machine, reduced here to a line-oriented
// approximation since tree-sitter's byte-accurate ERROR recovery already
// handles the token-level ambiguity the original's character-by-character
// tokenizer exists for).
func scanBoundaries(lines []string) (boundaries []scanBoundary, runGuardLine int) {
	runGuardLine = -1
	var openQuote string
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if openQuote == "" && !strings.HasPrefix(trimmed, "#") {
			switch {
			case reCellDecorator.MatchString(line):
				boundaries = append(boundaries, scanBoundary{i, "cell"})
			case reFuncDecorator.MatchString(line):
				boundaries = append(boundaries, scanBoundary{i, "function"})
			case reClassDecorator.MatchString(line):
				boundaries = append(boundaries, scanBoundary{i, "class"})
			case reSetupWith.MatchString(line):
				boundaries = append(boundaries, scanBoundary{i, "setup"})
			case reUnparsableCall.MatchString(line):
				boundaries = append(boundaries, scanBoundary{i, "unparsable"})
			case reRunGuard.MatchString(line):
				if runGuardLine < 0 {
					runGuardLine = i
				}
			}
		}
		openQuote = updateTripleQuoteState(line, openQuote)
	}
	return boundaries, runGuardLine
}

// updateTripleQuoteState tracks whether a line ends inside an open
// triple-quoted string, the minimal lookahead the boundary scanner needs to
// avoid mistaking a string literal's contents for a real boundary.
func updateTripleQuoteState(line string, open string) string {
	i := 0
	for i < len(line) {
		if open != "" {
			if strings.HasPrefix(line[i:], open) {
				open = ""
				i += 3
				continue
			}
			i++
			continue
		}
		if strings.HasPrefix(line[i:], `"""`) {
			open = `"""`
			i += 3
			continue
		}
		if strings.HasPrefix(line[i:], "'''") {
			open = "'''"
			i += 3
			continue
		}
		i++
	}
	return open
}

// scanFallback recovers a best-effort Serialization by tokenizing cell
// boundaries line-by-line and re-attempting a focused parse over each
// scanned chunk, falling back to a literal unparsable cell for any chunk
// that still fails (spec.md §4.2). Returns an error only when even the
// preamble (header/import/version/app-instantiation) cannot be recovered.
func scanFallback(ctx context.Context, source []byte) (*Serialization, error) {
	lines := strings.Split(string(source), "\n")
	boundaries, runGuardLine := scanBoundaries(lines)

	s := &Serialization{UsedScanner: true}

	preambleEnd := len(lines)
	if len(boundaries) > 0 {
		preambleEnd = boundaries[0].startLine
	} else if runGuardLine >= 0 {
		preambleEnd = runGuardLine
	}
	preamble := strings.Join(lines[:preambleEnd], "\n")
	if err := scanPreamble(ctx, preamble, s); err != nil {
		return nil, err
	}

	nextID := 0
	for i, b := range boundaries {
		end := len(lines)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].startLine
		} else if runGuardLine >= 0 {
			end = runGuardLine
		}
		chunk := strings.Join(lines[b.startLine:end], "\n")

		cell, violations, ok := scanCell(ctx, chunk, b.kind, nextID)
		s.Violations = append(s.Violations, violations...)
		if b.kind == "setup" && ok {
			c := cell
			s.Setup = &c
			continue
		}
		s.Cells = append(s.Cells, cell)
		nextID++
	}

	if runGuardLine < 0 {
		s.Violations = append(s.Violations, api.Violation{
			Description: "Expected `if __name__ == \"__main__\": app.run()` run guard.",
		})
	}

	s.Valid = true
	return s, nil
}

// scanPreamble recognizes the header/import/version/app-instantiation
// skeleton over the text preceding the first scanned cell boundary. A
// syntax error here is fatal since there is no cell-level fallback for it
// (mirrors the original's "preamble errors are fatal").
func scanPreamble(ctx context.Context, preamble string, s *Serialization) error {
	src := []byte(preamble)
	tree, err := pyast.Parse(ctx, src)
	if err != nil {
		return err
	}
	if pyast.HasError(tree.RootNode()) {
		return api.MarimoFileError{Reason: "preamble contains a syntax error the scanner cannot recover from"}
	}

	stmts := pyast.NamedChildren(tree.RootNode())
	importIdx := findMarimoImport(stmts, src)
	if importIdx < 0 {
		return api.MarimoFileError{Reason: "no `import marimo` statement found"}
	}
	if importIdx > 0 {
		s.Header = Header{Text: joinSpan(stmts[:importIdx], src)}
	}

	i := importIdx + 1
	if i < len(stmts) && isVersionAssignment(stmts[i], src) {
		s.Version = stringLiteralValue(stmts[i].ChildByFieldName("right"), src)
		s.HasVersion = true
		i++
	} else {
		s.Violations = append(s.Violations, violationAt(stmts, i, src,
			"Expected `__generated_with` assignment for marimo version number."))
	}

	for j := i; j < len(stmts); j++ {
		if isAppAssignment(stmts[j], src) {
			s.App = parseAppOptions(stmts[j], src, &s.Violations)
			return nil
		}
	}
	return api.MarimoFileError{Reason: "no `app = marimo.App(...)` instantiation found"}
}

// scanCell re-attempts a focused parse of one scanned chunk, dispatching to
// the same classifiers the whole-file Validator uses. On failure it wraps
// the chunk verbatim as an unparsable cell, the textual-extraction recovery
// of spec.md §4.2.
func scanCell(ctx context.Context, chunk, kind string, nextID int) (CellDef, []api.Violation, bool) {
	id := api.CellId(strconv.Itoa(nextID))
	src := []byte(chunk)

	tree, err := pyast.Parse(ctx, src)
	if err == nil && !pyast.HasError(tree.RootNode()) {
		stmts := pyast.NamedChildren(tree.RootNode())
		if len(stmts) > 0 {
			n := stmts[0]
			switch kind {
			case "cell", "function", "class":
				if n.Type() == "decorated_definition" {
					cell, ok, violations := classifyDecorated(n, src, id)
					if ok {
						return cell, violations, true
					}
				}
			case "setup":
				if isSetupWith(n, src) {
					cell, violations := parseSetupCell(n, src)
					return *cell, violations, true
				}
			case "unparsable":
				if isUnparsableCellCall(n, src) {
					cell, ok := parseUnparsableCell(n, src, id)
					if ok {
						return cell, nil, true
					}
				}
			}
		}
	}

	return CellDef{
			CellId: id,
			Code:   strings.TrimRight(chunk, "\n"),
			Kind:   KindUnparsable,
		}, []api.Violation{{
			Description: "Scanner recovered this cell textually after a focused re-parse failed.",
		}}, false
}
