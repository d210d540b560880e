// Package template resolves {name} placeholders in prompt templates
// against an explicit variable map.
package template

import "strings"

// Render substitutes {name} placeholders in tmpl with values from vars.
// Placeholders with no matching variable are left verbatim: prompt authors
// sometimes use literal braces (code snippets, JSON examples), and a
// missing variable degrades to visible template text rather than an error.
// Returns the input unchanged when it contains no opening brace.
func Render(tmpl string, vars map[string]string) string {
	if !strings.Contains(tmpl, "{") || len(vars) == 0 {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		open := strings.IndexByte(tmpl[i:], '{')
		if open < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		open += i
		b.WriteString(tmpl[i:open])

		close := strings.IndexByte(tmpl[open:], '}')
		if close < 0 {
			b.WriteString(tmpl[open:])
			break
		}
		close += open

		name := tmpl[open+1 : close]
		if v, ok := vars[name]; ok {
			b.WriteString(v)
		} else {
			// Unknown placeholder: pass through untouched.
			b.WriteString(tmpl[open : close+1])
		}
		i = close + 1
	}

	return b.String()
}
