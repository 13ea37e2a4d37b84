package stacks

import (
	"fmt"

	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/aws/dynamodb"
	"github.com/eddalmond/pulumi-tech-holiday/aws/s3"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// Bootstrap declares the state-storage stack: a versioned, encrypted S3
// bucket for deployment state and a DynamoDB table for state locking. Its
// exports are the backend configuration other stacks point at.
func Bootstrap(st *engine.Stack, cfg awsconf.Config) error {
	stateBucket, err := s3.NewBucket(st, cfg, "pulumi-state", s3.BucketArgs{
		Versioning:        true,
		Encryption:        true,
		PublicAccessBlock: true,
		Tags: map[string]string{
			"Purpose":     "Pulumi State Storage",
			"Environment": "Bootstrap",
			"ManagedBy":   "Pulumi",
		},
	})
	if err != nil {
		return err
	}

	lockTable, err := dynamodb.NewTable(st, cfg, "pulumi-state-lock", dynamodb.TableArgs{
		HashKey: "LockID",
		Attributes: []dynamodb.Attribute{
			{Name: "LockID", Type: "S"},
		},
		Tags: map[string]string{
			"Purpose":     "Pulumi State Locking",
			"Environment": "Bootstrap",
			"ManagedBy":   "Pulumi",
		},
	})
	if err != nil {
		return err
	}

	st.Export("state_bucket_name", stateBucket.Name())
	st.Export("state_bucket_region", cfg.Region)
	st.Export("lock_table_name", lockTable.TableName())
	st.Export("aws_account_id", cfg.AccountID)

	st.Export("backend_config", map[string]any{
		"bucket":         stateBucket.Name(),
		"region":         cfg.Region,
		"dynamodb_table": lockTable.TableName(),
	})

	st.Export("usage_instructions", stateBucket.Name().Apply(func(bucket string) string {
		return fmt.Sprintf(`
To use this S3 backend in other stacks:

1. Set the backend URL:
  pulumi login s3://%s

2. Or configure programmatically by adding this to your project's Pulumi.yaml:
  backend:
    url: s3://%s

3. The DynamoDB table will be used automatically for state locking.
`, bucket, bucket)
	}))

	return nil
}
