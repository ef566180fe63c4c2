// Package expr resolves DMR expression strings: "${NAME}" placeholders,
// comma-separated alternatives, and "NAME:DEFAULT" fallbacks (§4.2).
//
// Resolution never reaches for os.Getenv directly. Callers inject an
// Environment, the same dependency-injection shape the donor codebase uses
// for its command transports: production code wires a real process
// environment, tests wire a fixed map.
package expr

import (
	"os"
	"strings"

	"github.com/dmrmodel/dmr/dmrerr"
)

// Environment resolves a single lookup name to a value. Lookup reports
// ok=false when the name is unset, distinguishing "unset" from "set to the
// empty string".
type Environment interface {
	Lookup(name string) (value string, ok bool)
}

// Properties is an Environment backed by a fixed map. Lookup is a plain map
// lookup of the name as given: no "env." prefix is recognised or stripped,
// and the OS environment is not consulted.
type Properties map[string]string

func (p Properties) Lookup(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// OSEnvironment is an Environment backed by the process environment.
type OSEnvironment struct{}

func (OSEnvironment) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Chain tries each Environment in order, returning the first hit.
type Chain []Environment

func (c Chain) Lookup(name string) (string, bool) {
	for _, e := range c {
		if v, ok := e.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// maxDepth bounds re-resolution of nested expressions, sized to the input
// length so a cyclic template fails fast instead of looping forever.
func maxDepth(template string) int {
	n := len(template)
	if n < 8 {
		n = 8
	}
	return n
}

// Resolve expands every "${...}" placeholder in template against env,
// re-resolving results that themselves contain placeholders up to a bound
// derived from the template's length; a result still changing at that bound
// yields a *dmrerr.ModelError ("expression did not converge").
func Resolve(template string, env Environment) (string, error) {
	out := template
	for i := 0; i < maxDepth(template); i++ {
		next, changed, err := resolveOnce(out, env)
		if err != nil {
			return "", err
		}
		if !changed {
			return next, nil
		}
		out = next
	}
	return "", dmrerr.NewModelError("expression did not converge: " + template)
}

func resolveOnce(s string, env Environment) (string, bool, error) {
	var sb strings.Builder
	changed := false
	i := 0
	for i < len(s) {
		start := strings.Index(s[i:], "${")
		if start < 0 {
			sb.WriteString(s[i:])
			break
		}
		start += i
		sb.WriteString(s[i:start])
		end, ok := matchBrace(s, start+2)
		if !ok {
			return "", false, dmrerr.NewModelError("unterminated expression: " + s[start:])
		}
		body := s[start+2 : end]
		val, err := resolveBody(body, env)
		if err != nil {
			return "", false, err
		}
		sb.WriteString(val)
		changed = true
		i = end + 1
	}
	return sb.String(), changed, nil
}

// matchBrace finds the index of the "}" matching the "${" whose body starts
// at from, honoring nested "${...}" so defaults may themselves be
// expressions.
func matchBrace(s string, from int) (int, bool) {
	depth := 1
	for i := from; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "${"):
			depth++
			i++
		case s[i] == '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// resolveBody resolves one placeholder body: a comma-separated list of
// alternatives, each either "NAME" or "NAME:DEFAULT", tried in order: the
// first set NAME wins, and a NAME:DEFAULT whose NAME is unset yields DEFAULT
// at once. A bare alternative is always looked up as a name and never used
// as literal text; if no alternative yields a value, ErrUnresolved results.
func resolveBody(body string, env Environment) (string, error) {
	alternatives := splitTopLevel(body, ',')
	for _, alt := range alternatives {
		name, def, hasDefault := splitTopLevel2(alt, ':')
		name = strings.TrimSpace(name)
		if v, ok := lookup(name, env); ok {
			return v, nil
		}
		if hasDefault {
			return def, nil
		}
	}
	return "", dmrerr.ErrUnresolved
}

func lookup(name string, env Environment) (string, bool) {
	if env == nil {
		return "", false
	}
	return env.Lookup(name)
}

// splitTopLevel splits on sep, ignoring occurrences nested inside "${...}".
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "${"):
			depth++
			i++
		case s[i] == '}' && depth > 0:
			depth--
		case s[i] == sep && depth == 0:
			out = append(out, s[last:i])
			last = i + 1
		}
	}
	out = append(out, s[last:])
	return out
}

// splitTopLevel2 splits s at the first top-level occurrence of sep.
func splitTopLevel2(s string, sep byte) (before, after string, found bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "${"):
			depth++
			i++
		case s[i] == '}' && depth > 0:
			depth--
		case s[i] == sep && depth == 0:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
