// Package iam declares IAM roles and attaches synthesized policies.
//
// Inline policy documents are derived from resource ARNs with Apply, so a
// role policy keeps a dependency edge to the table or bucket it grants access
// to. An invalid access level aborts before any declaration is emitted.
package iam

import (
	"fmt"

	"github.com/eddalmond/pulumi-tech-holiday/engine"
	"github.com/eddalmond/pulumi-tech-holiday/policy"
)

// BasicExecutionPolicyARN is the AWS-managed policy granting Lambda its
// baseline CloudWatch Logs permissions.
const BasicExecutionPolicyARN = "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"

// ExecutionRole is a Lambda execution role with its managed attachments.
type ExecutionRole struct {
	Role *engine.Resource
	// BasicAttachment is the AWSLambdaBasicExecutionRole attachment.
	BasicAttachment *engine.Resource
	// AdditionalAttachments are attachments for caller-supplied policy ARNs,
	// in argument order.
	AdditionalAttachments []*engine.Resource
}

// ARN returns the role ARN as a StringOutput.
func (r *ExecutionRole) ARN() engine.StringOutput { return r.Role.Output("arn") }

// NewExecutionRole declares a role trusted by the Lambda service, attaches
// the basic execution managed policy, and attaches any additional managed
// policy ARNs.
func NewExecutionRole(st *engine.Stack, prefix string, additionalPolicyARNs []string, tags map[string]string) (*ExecutionRole, error) {
	trust, err := policy.AssumeRoleDocument("lambda.amazonaws.com").JSON()
	if err != nil {
		return nil, fmt.Errorf("iam: trust policy: %w", err)
	}

	role, err := st.Register("aws:iam/role:Role", prefix+"-role", engine.Inputs{
		"assumeRolePolicy": trust,
		"tags":             tags,
	})
	if err != nil {
		return nil, err
	}

	basic, err := st.Register("aws:iam/rolePolicyAttachment:RolePolicyAttachment", prefix+"-basic-policy", engine.Inputs{
		"role":      role.Output("name"),
		"policyArn": BasicExecutionPolicyARN,
	})
	if err != nil {
		return nil, err
	}

	execRole := &ExecutionRole{Role: role, BasicAttachment: basic}
	for i, arn := range additionalPolicyARNs {
		attachment, err := st.Register(
			"aws:iam/rolePolicyAttachment:RolePolicyAttachment",
			fmt.Sprintf("%s-additional-policy-%d", prefix, i),
			engine.Inputs{
				"role":      role.Output("name"),
				"policyArn": arn,
			})
		if err != nil {
			return nil, err
		}
		execRole.AdditionalAttachments = append(execRole.AdditionalAttachments, attachment)
	}
	return execRole, nil
}

// CustomPolicy declares an inline role policy wrapping the given statements.
func CustomPolicy(st *engine.Stack, name string, role *engine.Resource, stmts ...policy.Statement) (*engine.Resource, error) {
	doc, err := policy.NewDocument(stmts...).JSON()
	if err != nil {
		return nil, fmt.Errorf("iam: policy document: %w", err)
	}
	return st.Register("aws:iam/rolePolicy:RolePolicy", name+"-custom-policy", engine.Inputs{
		"role":   role,
		"policy": doc,
	})
}

// AttachTablePolicy declares an inline policy granting the access level on a
// DynamoDB table. The policy depends on the resource the ARN came from.
func AttachTablePolicy(st *engine.Stack, prefix string, role *engine.Resource, tableARN engine.StringOutput, level policy.TableAccess) (*engine.Resource, error) {
	// Validate the level before emitting anything.
	if _, err := policy.TableStatement(tableARN.Value(), level); err != nil {
		return nil, err
	}

	doc := tableARN.Apply(func(arn string) string {
		stmt, _ := policy.TableStatement(arn, level)
		js, _ := policy.NewDocument(stmt).JSON()
		return js
	})

	return st.Register("aws:iam/rolePolicy:RolePolicy", prefix+"-dynamodb-policy", engine.Inputs{
		"role":   role,
		"policy": doc,
	})
}

// AttachBucketPolicy declares an inline policy granting the access level on
// an S3 bucket. The policy depends on the resource the ARN came from.
func AttachBucketPolicy(st *engine.Stack, prefix string, role *engine.Resource, bucketARN engine.StringOutput, level policy.BucketAccess) (*engine.Resource, error) {
	if _, err := policy.BucketStatements(bucketARN.Value(), level); err != nil {
		return nil, err
	}

	doc := bucketARN.Apply(func(arn string) string {
		stmts, _ := policy.BucketStatements(arn, level)
		js, _ := policy.NewDocument(stmts...).JSON()
		return js
	})

	return st.Register("aws:iam/rolePolicy:RolePolicy", prefix+"-s3-policy", engine.Inputs{
		"role":   role,
		"policy": doc,
	})
}

// AttachLogsPolicy declares an inline CloudWatch Logs write policy. An empty
// logGroupARN grants against all log groups.
func AttachLogsPolicy(st *engine.Stack, prefix string, role *engine.Resource, logGroupARN string) (*engine.Resource, error) {
	return CustomPolicy(st, prefix+"-cloudwatch-logs", role, policy.LogsStatement(logGroupARN))
}
