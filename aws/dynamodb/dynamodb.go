// Package dynamodb declares DynamoDB tables.
package dynamodb

import (
	"fmt"

	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// Attribute is one key attribute definition.
type Attribute struct {
	Name string
	Type string
}

// TableArgs configures a table declaration.
type TableArgs struct {
	// HashKey is the partition key attribute name.
	HashKey string
	// Attributes are the key attribute definitions. At minimum the hash key
	// must be defined here.
	Attributes []Attribute
	// Tags to apply to the table.
	Tags map[string]string
}

// Table wraps a declared DynamoDB table.
type Table struct {
	res *engine.Resource
}

// Resource returns the underlying declaration.
func (t *Table) Resource() *engine.Resource { return t.res }

// TableName returns the table name as a StringOutput.
func (t *Table) TableName() engine.StringOutput { return t.res.Output("name") }

// ARN returns the table ARN as a StringOutput.
func (t *Table) ARN() engine.StringOutput { return t.res.Output("arn") }

// NewTable declares an on-demand (PAY_PER_REQUEST) table named
// "{prefix}-{accountID}".
func NewTable(st *engine.Stack, cfg awsconf.Config, prefix string, args TableArgs) (*Table, error) {
	attrs := make([]any, len(args.Attributes))
	for i, a := range args.Attributes {
		attrs[i] = map[string]any{"name": a.Name, "type": a.Type}
	}

	res, err := st.Register("aws:dynamodb/table:Table", prefix, engine.Inputs{
		"name":        fmt.Sprintf("%s-%s", prefix, cfg.AccountID),
		"billingMode": "PAY_PER_REQUEST",
		"hashKey":     args.HashKey,
		"attributes":  attrs,
		"tags":        args.Tags,
	})
	if err != nil {
		return nil, err
	}
	return &Table{res: res}, nil
}
