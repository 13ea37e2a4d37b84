// Package guardrails checks declared resources against advisory policies.
//
// Rules:
//
//	s3-managed-by-tag: Ensure S3 buckets include the ManagedBy tag for
//	ownership tracking.
//
// Every rule here is advisory: violations are reported alongside a preview
// but never block it.
package guardrails

import (
	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// Severity classifies how a violation should be treated.
type Severity string

const (
	// SeverityAdvisory reports the violation without failing the run.
	SeverityAdvisory Severity = "advisory"
)

// Issue is one rule violation on one declared resource.
type Issue struct {
	// Resource is the logical name of the offending declaration.
	Resource string `json:"resource" yaml:"resource"`
	// Kind is the resource kind token.
	Kind string `json:"kind" yaml:"kind"`
	// Rule is the id of the rule that fired.
	Rule string `json:"rule" yaml:"rule"`
	// Severity of the violation.
	Severity Severity `json:"severity" yaml:"severity"`
	// Message describes the violation.
	Message string `json:"message" yaml:"message"`
}

// Rule validates a single resource declaration.
type Rule interface {
	ID() string
	Description() string
	Check(res *engine.Resource) []Issue
}

// DefaultRules returns the rule set applied by Check.
func DefaultRules() []Rule {
	return []Rule{
		S3ManagedByTag{},
	}
}

// Check runs the default rules over every declared resource and returns the
// violations in declaration order.
func Check(resources []*engine.Resource) []Issue {
	var issues []Issue
	for _, res := range resources {
		for _, rule := range DefaultRules() {
			issues = append(issues, rule.Check(res)...)
		}
	}
	return issues
}

// S3ManagedByTag requires S3 buckets to carry a ManagedBy tag.
type S3ManagedByTag struct{}

func (r S3ManagedByTag) ID() string { return "s3-managed-by-tag" }
func (r S3ManagedByTag) Description() string {
	return "Ensure S3 buckets include the ManagedBy tag for ownership tracking."
}

// Check flags buckets whose declared tags lack the ManagedBy key.
func (r S3ManagedByTag) Check(res *engine.Resource) []Issue {
	if res.Kind() != "aws:s3/bucket:Bucket" {
		return nil
	}

	message := ensureManagedByTag(res.RawOutput("tags"))
	if message == "" {
		return nil
	}
	return []Issue{{
		Resource: res.LogicalName(),
		Kind:     res.Kind(),
		Rule:     r.ID(),
		Severity: SeverityAdvisory,
		Message:  message,
	}}
}

// ensureManagedByTag validates the declared tag value. An empty return means
// the tags pass.
func ensureManagedByTag(tags any) string {
	switch v := tags.(type) {
	case nil:
		return "Resource should include a 'ManagedBy' tag to denote ownership."
	case map[string]string:
		if _, ok := v["ManagedBy"]; !ok {
			return "Resource should include a 'ManagedBy' tag to denote ownership."
		}
		return ""
	case map[string]any:
		if _, ok := v["ManagedBy"]; !ok {
			return "Resource should include a 'ManagedBy' tag to denote ownership."
		}
		return ""
	default:
		return "Expected tags to be a mapping"
	}
}
