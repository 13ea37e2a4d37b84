// Package s3 declares S3 buckets with optional security configuration.
//
// Bucket names follow "{prefix}-{accountID}-{region}" so the same program
// can deploy into any account without naming collisions.
package s3

import (
	"fmt"

	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// BucketArgs configures a bucket declaration.
type BucketArgs struct {
	// Versioning enables object versioning.
	Versioning bool
	// Encryption enables AES256 server-side encryption with bucket keys.
	Encryption bool
	// PublicAccessBlock blocks all forms of public access.
	PublicAccessBlock bool
	// Tags to apply to the bucket. Nil is treated as empty.
	Tags map[string]string
}

// BucketResources bundles the bucket and every optional resource declared
// with it. Optional fields are nil when the corresponding flag was off.
type BucketResources struct {
	Bucket            *engine.Resource
	Versioning        *engine.Resource
	Encryption        *engine.Resource
	PublicAccessBlock *engine.Resource
}

// Name returns the bucket name as a StringOutput.
func (b *BucketResources) Name() engine.StringOutput { return b.Bucket.Output("bucket") }

// ARN returns the bucket ARN as a StringOutput.
func (b *BucketResources) ARN() engine.StringOutput { return b.Bucket.Output("arn") }

// NewBucket declares a bucket named "{prefix}-{accountID}-{region}" plus the
// optional configuration resources selected in args.
func NewBucket(st *engine.Stack, cfg awsconf.Config, prefix string, args BucketArgs) (*BucketResources, error) {
	bucketName := fmt.Sprintf("%s-%s-%s", prefix, cfg.AccountID, cfg.Region)

	tags := args.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	bucket, err := st.Register("aws:s3/bucket:Bucket", prefix+"-bucket", engine.Inputs{
		"bucket": bucketName,
		"tags":   tags,
	})
	if err != nil {
		return nil, err
	}

	resources := &BucketResources{Bucket: bucket}

	if args.Versioning {
		resources.Versioning, err = EnableVersioning(st, bucket, prefix)
		if err != nil {
			return nil, err
		}
	}
	if args.Encryption {
		resources.Encryption, err = EnableEncryption(st, bucket, prefix)
		if err != nil {
			return nil, err
		}
	}
	if args.PublicAccessBlock {
		resources.PublicAccessBlock, err = EnablePublicAccessBlock(st, bucket, prefix)
		if err != nil {
			return nil, err
		}
	}
	return resources, nil
}

// EnableVersioning declares a versioning configuration on the bucket.
func EnableVersioning(st *engine.Stack, bucket *engine.Resource, prefix string) (*engine.Resource, error) {
	return st.Register("aws:s3/bucketVersioning:BucketVersioning", prefix+"-versioning", engine.Inputs{
		"bucket": bucket,
		"versioningConfiguration": map[string]any{
			"status": "Enabled",
		},
	})
}

// EnableEncryption declares AES256 server-side encryption on the bucket.
func EnableEncryption(st *engine.Stack, bucket *engine.Resource, prefix string) (*engine.Resource, error) {
	kind := "aws:s3/bucketServerSideEncryptionConfiguration:BucketServerSideEncryptionConfiguration"
	return st.Register(kind, prefix+"-encryption", engine.Inputs{
		"bucket": bucket,
		"rules": []any{
			map[string]any{
				"applyServerSideEncryptionByDefault": map[string]any{
					"sseAlgorithm": "AES256",
				},
				"bucketKeyEnabled": true,
			},
		},
	})
}

// EnablePublicAccessBlock declares a full public access block on the bucket.
func EnablePublicAccessBlock(st *engine.Stack, bucket *engine.Resource, prefix string) (*engine.Resource, error) {
	return st.Register("aws:s3/bucketPublicAccessBlock:BucketPublicAccessBlock", prefix+"-pab", engine.Inputs{
		"bucket":                bucket,
		"blockPublicAcls":       true,
		"blockPublicPolicy":     true,
		"ignorePublicAcls":      true,
		"restrictPublicBuckets": true,
	})
}
