package stacks

import (
	"github.com/eddalmond/pulumi-tech-holiday/aws/apigateway"
	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/aws/dynamodb"
	"github.com/eddalmond/pulumi-tech-holiday/aws/iam"
	"github.com/eddalmond/pulumi-tech-holiday/aws/lambda"
	"github.com/eddalmond/pulumi-tech-holiday/aws/s3"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
	"github.com/eddalmond/pulumi-tech-holiday/policy"
)

// Application declares the main API stack: storage bucket, DynamoDB table,
// execution role with table and bucket grants, the Lambda handler, and a
// REST API proxying every path to it.
func Application(st *engine.Stack, cfg awsconf.Config) error {
	bucket, err := s3.NewBucket(st, cfg, "api-bucket", s3.BucketArgs{
		Versioning:        true,
		Encryption:        true,
		PublicAccessBlock: true,
		Tags: map[string]string{
			"Purpose":     "App storage bucket",
			"Environment": cfg.StackName,
			"ManagedBy":   "Pulumi",
		},
	})
	if err != nil {
		return err
	}

	table, err := dynamodb.NewTable(st, cfg, "api-table", dynamodb.TableArgs{
		HashKey: "id",
		Attributes: []dynamodb.Attribute{
			{Name: "id", Type: "S"},
		},
		Tags: map[string]string{
			"Name":        "API DynamoDB Table",
			"Environment": cfg.StackName,
		},
	})
	if err != nil {
		return err
	}

	role, err := iam.NewExecutionRole(st, "lambda", nil, map[string]string{
		"Name":        "Lambda Execution Role",
		"Environment": cfg.StackName,
		"ManagedBy":   "Pulumi",
	})
	if err != nil {
		return err
	}

	// Access levels can be tightened here without touching the rest of the
	// stack (read_only, write_only, list_only).
	if _, err := iam.AttachTablePolicy(st, "lambda", role.Role, table.ARN(), policy.TableFullAccess); err != nil {
		return err
	}
	if _, err := iam.AttachBucketPolicy(st, "lambda", role.Role, bucket.ARN(), policy.BucketFullAccess); err != nil {
		return err
	}

	fn, err := lambda.NewFunction(st, "api-lambda", lambda.FunctionArgs{
		RoleARN:     role.ARN(),
		Runtime:     "python3.13",
		Handler:     "app.handler",
		CodeArchive: "../src/lambda",
		Environment: map[string]any{
			"DYNAMODB_TABLE": table.TableName(),
			"S3_BUCKET":      bucket.Name(),
		},
		Tags: map[string]string{
			"Name":        "API Lambda Function",
			"Environment": cfg.StackName,
		},
	})
	if err != nil {
		return err
	}

	_, _, apiURL, err := apigateway.NewLambdaRestApi(st, "api", fn, cfg.StackName, cfg, apigateway.LambdaRestApiArgs{
		Description: "Simple REST API with Lambda backend",
		RootRoute:   true,
		ProxyRoute:  true,
		Tags: map[string]string{
			"Name":        "Simple API",
			"Environment": cfg.StackName,
			"ManagedBy":   "Pulumi",
		},
	})
	if err != nil {
		return err
	}

	st.Export("api_url", apiURL)
	st.Export("bucket_name", bucket.Name())
	st.Export("dynamodb_table_name", table.TableName())
	st.Export("lambda_function_name", fn.FunctionName())

	return nil
}
