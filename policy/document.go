// This file contains the IAM policy document value types.

package policy

import "encoding/json"

// DocumentVersion is the fixed IAM policy language version.
const DocumentVersion = "2012-10-17"

// EffectAllow is the effect carried by every synthesized statement.
const EffectAllow = "Allow"

// ServicePrincipal identifies an AWS service principal in a trust statement.
// Serializes to {"Service": "..."}.
type ServicePrincipal struct {
	Service string `json:"Service"`
}

// Statement is one authorization clause: effect, actions, and scope.
// Resource is either a single ARN string or an ordered list of ARNs.
type Statement struct {
	Sid       string   `json:"Sid,omitempty"`
	Effect    string   `json:"Effect"`
	Principal any      `json:"Principal,omitempty"`
	Action    []string `json:"Action"`
	Resource  any      `json:"Resource,omitempty"`
}

// Document is a versioned, ordered container of statements. Statement order
// is insertion order; it carries no meaning to IAM but keeps output
// deterministic.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// NewDocument wraps statements into a document with the fixed version tag.
func NewDocument(stmts ...Statement) Document {
	return Document{
		Version:   DocumentVersion,
		Statement: stmts,
	}
}

// JSON returns the document as compact JSON, the form IAM accepts inline.
func (d Document) JSON() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
