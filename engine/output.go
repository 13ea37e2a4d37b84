package engine

import "fmt"

// StringOutput is a provider-derived string value. The deployment backend
// resolves it before the stack program observes it, so the value is always
// available; what the output carries beyond the string is the set of
// resources it was derived from, so dependency edges survive derivation:
//
//	url := engine.Concat("https://", api.IDOutput(), ".example.com/")
//
// url depends on api, and any resource registered with url as an input
// inherits that edge.
type StringOutput struct {
	value string
	deps  []*Resource
}

// String wraps a plain string as a StringOutput with no dependencies.
func String(s string) StringOutput {
	return StringOutput{value: s}
}

// Value returns the resolved string.
func (o StringOutput) Value() string { return o.value }

// Apply derives a new output from this one, keeping the dependency set.
func (o StringOutput) Apply(fn func(string) string) StringOutput {
	return StringOutput{value: fn(o.value), deps: o.deps}
}

// Concat joins parts into one StringOutput. Parts may be string,
// StringOutput, or *Resource (contributing its id); dependencies are merged.
func Concat(parts ...any) StringOutput {
	var value string
	var deps []*Resource
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			value += v
		case StringOutput:
			value += v.value
			deps = append(deps, v.deps...)
		case *Resource:
			value += v.id
			deps = append(deps, v)
		default:
			value += fmt.Sprint(v)
		}
	}
	return StringOutput{value: value, deps: dedupe(deps)}
}
