// Package engine records declarative resource registrations and hands them to
// a provisioning backend.
//
// The backend is the external deployment engine: it owns state diffing,
// scheduling, retries, and every provider API call. This package only builds
// the declaration graph the backend consumes:
//
//	st := engine.NewStack("dev", backend)
//	bucket, err := st.Register("aws:s3/bucket:Bucket", "assets", engine.Inputs{
//	    "bucket": "assets-123456789012-us-west-2",
//	})
//
// Provider-assigned values come back as StringOutput, an opaque string that
// remembers which resources it was derived from. Passing a StringOutput (or a
// *Resource directly) as an input value records a dependency edge, with no
// explicit reference wrappers needed.
package engine

import (
	"fmt"
	"sort"
)

// Inputs is the argument bag for a resource registration.
type Inputs = map[string]any

// Backend provisions declared resources. Implementations may talk to a live
// cloud or return canned values (see the mock subpackage).
type Backend interface {
	// NewResource declares one resource and returns its provider-assigned id
	// and output attributes.
	NewResource(kind, name string, inputs map[string]any) (id string, outputs map[string]any, err error)

	// Call invokes a provider data-source function (identity, region, ...).
	Call(token string, args map[string]any) (map[string]any, error)
}

// Resource is one declared resource. It is created by Stack.Register and
// immutable afterwards.
type Resource struct {
	kind      string
	name      string
	id        string
	outputs   map[string]any
	dependsOn []*Resource
}

// Kind returns the provider resource kind (e.g. "aws:s3/bucket:Bucket").
func (r *Resource) Kind() string { return r.kind }

// LogicalName returns the declaration name within the stack.
func (r *Resource) LogicalName() string { return r.name }

// ID returns the provider-assigned identifier.
func (r *Resource) ID() string { return r.id }

// IDOutput returns the identifier as a StringOutput depending on r.
func (r *Resource) IDOutput() StringOutput {
	return StringOutput{value: r.id, deps: []*Resource{r}}
}

// Output returns a string-valued output attribute as a StringOutput
// depending on r. Missing or non-string attributes yield an empty value.
func (r *Resource) Output(attr string) StringOutput {
	v, _ := r.outputs[attr].(string)
	return StringOutput{value: v, deps: []*Resource{r}}
}

// RawOutput returns an output attribute without dependency tracking.
func (r *Resource) RawOutput(attr string) any { return r.outputs[attr] }

// DependsOn returns the resources this declaration depends on, in a
// deterministic order: input-implied edges by sorted input key, then explicit
// edges in option order.
func (r *Resource) DependsOn() []*Resource {
	out := make([]*Resource, len(r.dependsOn))
	copy(out, r.dependsOn)
	return out
}

// RegisterOption customizes a single Register call.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	dependsOn []*Resource
}

// DependsOn adds explicit dependency edges beyond those implied by inputs.
// The deployment backend must not consider this resource live until every
// listed resource is.
func DependsOn(rs ...*Resource) RegisterOption {
	return func(c *registerConfig) {
		c.dependsOn = append(c.dependsOn, rs...)
	}
}

// Export is one key/value surfaced to the caller of a stack program.
type Export struct {
	Name  string
	Value any
}

// Stack accumulates resource declarations for one deployment target.
type Stack struct {
	name      string
	backend   Backend
	resources []*Resource
	byName    map[string]*Resource
	exports   []Export
}

// NewStack creates an empty stack bound to a backend.
func NewStack(name string, backend Backend) *Stack {
	return &Stack{
		name:    name,
		backend: backend,
		byName:  make(map[string]*Resource),
	}
}

// Name returns the stack name (the deployment target label).
func (s *Stack) Name() string { return s.name }

// Register declares a resource. Input values may be plain Go values,
// StringOutput, *Resource (resolved to its id), or nested maps and slices of
// those. Dependencies implied by inputs and added via DependsOn are recorded
// on the returned Resource.
func (s *Stack) Register(kind, name string, inputs Inputs, opts ...RegisterOption) (*Resource, error) {
	if _, exists := s.byName[name]; exists {
		return nil, fmt.Errorf("engine: duplicate resource name %q", name)
	}

	var cfg registerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	resolved := make(map[string]any, len(inputs))
	var deps []*Resource
	for _, k := range sortedKeys(inputs) {
		rv, rdeps := resolveValue(inputs[k])
		resolved[k] = rv
		deps = append(deps, rdeps...)
	}
	deps = append(deps, cfg.dependsOn...)

	id, outputs, err := s.backend.NewResource(kind, name, resolved)
	if err != nil {
		return nil, fmt.Errorf("engine: registering %s %q: %w", kind, name, err)
	}
	if outputs == nil {
		outputs = map[string]any{}
	}

	res := &Resource{
		kind:      kind,
		name:      name,
		id:        id,
		outputs:   outputs,
		dependsOn: dedupe(deps),
	}
	s.resources = append(s.resources, res)
	s.byName[name] = res
	return res, nil
}

// Invoke calls a provider data-source function through the backend.
func (s *Stack) Invoke(token string, args map[string]any) (map[string]any, error) {
	result, err := s.backend.Call(token, args)
	if err != nil {
		return nil, fmt.Errorf("engine: invoking %s: %w", token, err)
	}
	return result, nil
}

// Export surfaces a value to the stack's caller. StringOutput values are
// resolved; insertion order is preserved.
func (s *Stack) Export(name string, value any) {
	resolved, _ := resolveValue(value)
	s.exports = append(s.exports, Export{Name: name, Value: resolved})
}

// Exports returns the exported key/value pairs in insertion order.
func (s *Stack) Exports() []Export {
	out := make([]Export, len(s.exports))
	copy(out, s.exports)
	return out
}

// Resources returns all declarations in registration order.
func (s *Stack) Resources() []*Resource {
	out := make([]*Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// resolveValue converts composed input values into backend-ready plain values
// and collects the resources they were derived from.
func resolveValue(v any) (any, []*Resource) {
	switch val := v.(type) {
	case StringOutput:
		return val.value, val.deps
	case *Resource:
		return val.id, []*Resource{val}
	case map[string]any:
		out := make(map[string]any, len(val))
		var deps []*Resource
		for _, k := range sortedKeys(val) {
			rv, rdeps := resolveValue(val[k])
			out[k] = rv
			deps = append(deps, rdeps...)
		}
		return out, deps
	case []any:
		out := make([]any, len(val))
		var deps []*Resource
		for i, elem := range val {
			rv, rdeps := resolveValue(elem)
			out[i] = rv
			deps = append(deps, rdeps...)
		}
		return out, deps
	default:
		return v, nil
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupe(rs []*Resource) []*Resource {
	seen := make(map[*Resource]bool, len(rs))
	var out []*Resource
	for _, r := range rs {
		if r == nil || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
