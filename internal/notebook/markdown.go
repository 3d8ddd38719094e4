package notebook

import (
	"strconv"
	"strings"

	"github.com/reactive-notebook/nbcore/api"
)

// ParseMarkdown recognizes the Markdown notebook variant: prose with fenced
// ```python {.marimo key="value" ...} code blocks standing in for
// `@app.cell(...)` cells, each fence's attribute list carrying the cell's
// options. There is no header/import/version/app-instantiation skeleton to
// validate in this form, so Parse's structural violations don't apply; an
// unclosed fence produces a Violation instead of failing the whole
// document. A malformed attribute list produces no Violation.
func ParseMarkdown(source []byte) *Serialization {
	lines := strings.Split(string(source), "\n")
	s := &Serialization{Valid: true}

	var headerLines []string
	i := 0
	for i < len(lines) && !isMarimoFence(lines[i]) {
		headerLines = append(headerLines, lines[i])
		i++
	}
	s.Header = Header{Text: strings.Join(headerLines, "\n")}

	nextID := 0
	for i < len(lines) {
		if !isMarimoFence(lines[i]) {
			i++
			continue
		}
		opts := parseFenceAttrs(lines[i])
		start := i + 1
		end := start
		closed := false
		for end < len(lines) {
			if strings.TrimSpace(lines[end]) == "```" {
				closed = true
				break
			}
			end++
		}
		if !closed {
			s.Violations = append(s.Violations, api.Violation{
				Description: "Unclosed fenced code block.",
				Lineno:      i,
			})
			break
		}
		code := strings.Join(lines[start:end], "\n")
		s.Cells = append(s.Cells, CellDef{
			CellId:  api.CellId(strconv.Itoa(nextID)),
			Code:    code,
			Options: opts,
			Kind:    KindOrdinaryCell,
		})
		nextID++
		i = end + 1
	}

	return s
}

func isMarimoFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```python {.marimo") || strings.HasPrefix(t, "```{.marimo")
}

// parseFenceAttrs extracts key="value" pairs from a fence's attribute list,
// e.g. ```python {.marimo disabled="true" column="1"}.
func parseFenceAttrs(line string) api.CellOptions {
	open := strings.Index(line, "{")
	closeIdx := strings.LastIndex(line, "}")
	opts := api.CellOptions{}
	if open < 0 || closeIdx < 0 || closeIdx <= open {
		return opts
	}
	body := line[open+1 : closeIdx]
	fields := splitAttrFields(body)
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || strings.HasPrefix(f, ".") {
			continue
		}
		eq := strings.Index(f, "=")
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(f[:eq])
		val := strings.Trim(strings.TrimSpace(f[eq+1:]), `"`)
		switch key {
		case "disabled":
			opts.Disabled = val == "true"
		case "hide_code":
			opts.HideCode = val == "true"
		case "column":
			if n, err := strconv.Atoi(val); err == nil {
				opts.Column = &n
			}
		default:
			opts.Extras = append(opts.Extras, api.KV{Key: key, Value: api.Literal{Kind: api.LiteralString, Str: val}})
		}
	}
	return opts
}

// splitAttrFields splits a fence attribute body on whitespace, respecting
// quoted values that may themselves contain spaces.
func splitAttrFields(body string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range body {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ' ' && !inQuotes:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}
