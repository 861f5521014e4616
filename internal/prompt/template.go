// Package prompt renders {{name}} placeholder templates.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template is a parsed prompt template.
type Template struct {
	text string
	vars []string
}

func Parse(text string) Template {
	return Template{text: text, vars: ExtractVariables(text)}
}

// Vars lists the placeholder names in order of first appearance.
func (t Template) Vars() []string { return t.vars }

// Require reports the first of names the template does not reference.
func (t Template) Require(names ...string) error {
	for _, n := range names {
		found := false
		for _, v := range t.vars {
			if v == n {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("template must reference {{%s}}", n)
		}
	}
	return nil
}

// Render substitutes vars in a single pass. Substituted values are never
// scanned for placeholders.
func (t Template) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, v := range t.vars {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	return variablePattern.ReplaceAllStringFunc(t.text, func(match string) string {
		return vars[match[2:len(match)-2]]
	}), nil
}

// Render parses template and renders it with vars.
func Render(template string, vars map[string]string) (string, error) {
	return Parse(template).Render(vars)
}

// ExtractVariables returns the distinct placeholder names in template.
func ExtractVariables(template string) []string {
	matches := variablePattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if !seen[m[1]] {
			vars = append(vars, m[1])
			seen[m[1]] = true
		}
	}
	return vars
}
