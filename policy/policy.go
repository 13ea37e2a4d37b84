// Package policy synthesizes IAM policy statements and documents for common
// AWS access patterns.
//
// Access levels are typed per resource kind, so the compiler catches a table
// level handed to a bucket helper:
//
//	stmt, err := policy.TableStatement(tableARN, policy.TableFullAccess)
//	stmts, err := policy.BucketStatements(bucketARN, policy.BucketReadOnly)
//
// Synthesis is pure: identical inputs yield structurally identical output,
// and an unrecognized level fails with *InvalidAccessLevelError before any
// statement is produced.
package policy

import (
	"fmt"
	"strings"
)

// TableAccess is a named permission tier for a DynamoDB table.
type TableAccess string

// Recognized table access levels.
const (
	TableFullAccess TableAccess = "full_access"
	TableReadOnly   TableAccess = "read_only"
	TableWriteOnly  TableAccess = "write_only"
)

// BucketAccess is a named permission tier for an S3 bucket.
type BucketAccess string

// Recognized bucket access levels.
const (
	BucketFullAccess BucketAccess = "full_access"
	BucketReadOnly   BucketAccess = "read_only"
	BucketWriteOnly  BucketAccess = "write_only"
	BucketListOnly   BucketAccess = "list_only"
)

var tableActions = map[TableAccess][]string{
	TableFullAccess: {
		"dynamodb:PutItem",
		"dynamodb:GetItem",
		"dynamodb:UpdateItem",
		"dynamodb:DeleteItem",
		"dynamodb:Scan",
		"dynamodb:Query",
		"dynamodb:BatchGetItem",
		"dynamodb:BatchWriteItem",
	},
	TableReadOnly: {
		"dynamodb:GetItem",
		"dynamodb:Scan",
		"dynamodb:Query",
		"dynamodb:BatchGetItem",
	},
	TableWriteOnly: {
		"dynamodb:PutItem",
		"dynamodb:UpdateItem",
		"dynamodb:DeleteItem",
		"dynamodb:BatchWriteItem",
	},
}

var bucketActions = map[BucketAccess][]string{
	BucketFullAccess: {
		"s3:GetObject",
		"s3:PutObject",
		"s3:DeleteObject",
		"s3:ListBucket",
		"s3:GetObjectVersion",
		"s3:DeleteObjectVersion",
		"s3:PutObjectAcl",
		"s3:GetObjectAcl",
	},
	BucketReadOnly: {
		"s3:GetObject",
		"s3:ListBucket",
		"s3:GetObjectVersion",
		"s3:GetObjectAcl",
	},
	BucketWriteOnly: {
		"s3:PutObject",
		"s3:DeleteObject",
		"s3:DeleteObjectVersion",
		"s3:PutObjectAcl",
	},
	BucketListOnly: {
		"s3:ListBucket",
	},
}

// Declaration order of the valid sets, kept stable for error messages.
var (
	tableLevels  = []TableAccess{TableFullAccess, TableReadOnly, TableWriteOnly}
	bucketLevels = []BucketAccess{BucketFullAccess, BucketReadOnly, BucketWriteOnly, BucketListOnly}
)

// InvalidAccessLevelError reports an access level that is not recognized for
// the resource kind. It carries the offending value and the valid set.
type InvalidAccessLevelError struct {
	Kind  string
	Level string
	Valid []string
}

func (e *InvalidAccessLevelError) Error() string {
	return fmt.Sprintf("policy: invalid %s access level %q (valid: %s)",
		e.Kind, e.Level, strings.Join(e.Valid, ", "))
}

// TableStatement returns the single Allow statement granting the given
// access level on a DynamoDB table, scoped to tableARN.
func TableStatement(tableARN string, level TableAccess) (Statement, error) {
	actions, ok := tableActions[level]
	if !ok {
		return Statement{}, &InvalidAccessLevelError{
			Kind:  "table",
			Level: string(level),
			Valid: levelStrings(tableLevels),
		}
	}
	return Statement{
		Effect:   EffectAllow,
		Action:   cloneActions(actions),
		Resource: tableARN,
	}, nil
}

// BucketStatements returns the Allow statements granting the given access
// level on an S3 bucket. Bucket-level actions are scoped to bucketARN and
// object-level actions (those containing "Object") to bucketARN + "/*";
// list_only yields exactly one bucket-scoped statement.
func BucketStatements(bucketARN string, level BucketAccess) ([]Statement, error) {
	actions, ok := bucketActions[level]
	if !ok {
		return nil, &InvalidAccessLevelError{
			Kind:  "bucket",
			Level: string(level),
			Valid: levelStrings(bucketLevels),
		}
	}

	if level == BucketListOnly {
		return []Statement{{
			Effect:   EffectAllow,
			Action:   cloneActions(actions),
			Resource: bucketARN,
		}}, nil
	}

	var bucketLevel, objectLevel []string
	for _, a := range actions {
		if strings.Contains(a, "Object") {
			objectLevel = append(objectLevel, a)
		} else {
			bucketLevel = append(bucketLevel, a)
		}
	}

	var stmts []Statement
	if len(bucketLevel) > 0 {
		stmts = append(stmts, Statement{
			Effect:   EffectAllow,
			Action:   bucketLevel,
			Resource: bucketARN,
		})
	}
	if len(objectLevel) > 0 {
		stmts = append(stmts, Statement{
			Effect:   EffectAllow,
			Action:   objectLevel,
			Resource: bucketARN + "/*",
		})
	}
	return stmts, nil
}

// LogsStatement returns the CloudWatch Logs write statement. An empty
// logGroupARN grants against all log groups.
func LogsStatement(logGroupARN string) Statement {
	if logGroupARN == "" {
		logGroupARN = "*"
	}
	return Statement{
		Effect: EffectAllow,
		Action: []string{
			"logs:CreateLogGroup",
			"logs:CreateLogStream",
			"logs:PutLogEvents",
		},
		Resource: logGroupARN,
	}
}

// InvokeFunctionStatement returns the statement allowing invocation of the
// given Lambda function.
func InvokeFunctionStatement(functionARN string) Statement {
	return Statement{
		Effect:   EffectAllow,
		Action:   []string{"lambda:InvokeFunction"},
		Resource: functionARN,
	}
}

// AssumeRoleStatement returns the trust statement allowing a service
// principal to assume a role.
func AssumeRoleStatement(service string) Statement {
	return Statement{
		Effect:    EffectAllow,
		Principal: ServicePrincipal{Service: service},
		Action:    []string{"sts:AssumeRole"},
	}
}

// AssumeRoleDocument returns the trust policy document for a service
// principal.
func AssumeRoleDocument(service string) Document {
	return NewDocument(AssumeRoleStatement(service))
}

func levelStrings[T ~string](levels []T) []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = string(l)
	}
	return out
}

func cloneActions(actions []string) []string {
	return append([]string(nil), actions...)
}
