// Package render substitutes flat {{key}} placeholders into email
// template strings. It is deliberately not a templating language: no
// conditionals, no nesting, no escaping. Callers are responsible for
// sanitizing any user-supplied value destined for the HTML body.
package render

import "strings"

// Template holds the three renderable strings of a stored email template.
type Template struct {
	Subject string
	HTML    string
	Text    string
}

// Rendered is the result of substituting variables into a Template.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Vars maps placeholder keys to their replacement values.
type Vars map[string]string

// Render replaces every literal occurrence of {{key}} in the subject,
// HTML and text strings with the corresponding value. Placeholders
// whose key is absent from vars are left literal rather than stripped,
// so a stale template renders visibly wrong instead of silently empty.
func Render(t Template, vars Vars) Rendered {
	return Rendered{
		Subject: substitute(t.Subject, vars),
		HTML:    substitute(t.HTML, vars),
		Text:    substitute(t.Text, vars),
	}
}

func substitute(s string, vars Vars) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
