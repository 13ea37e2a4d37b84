package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddalmond/pulumi-tech-holiday/engine"
	"github.com/eddalmond/pulumi-tech-holiday/engine/mock"
)

func TestRegisterResolvesPlainInputs(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	res, err := st.Register("aws:s3/bucket:Bucket", "assets", engine.Inputs{
		"bucket": "assets-123456789012-us-west-2",
	})
	require.NoError(t, err)

	assert.Equal(t, "aws:s3/bucket:Bucket", res.Kind())
	assert.Equal(t, "assets", res.LogicalName())
	assert.Equal(t, "assets-123456789012-us-west-2-id", res.ID())
	assert.Equal(t, "arn:aws:s3:::assets-123456789012-us-west-2", res.Output("arn").Value())
	assert.Empty(t, res.DependsOn())
}

func TestRegisterDuplicateName(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	_, err := st.Register("aws:s3/bucket:Bucket", "assets", engine.Inputs{})
	require.NoError(t, err)

	_, err = st.Register("aws:dynamodb/table:Table", "assets", engine.Inputs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate resource name "assets"`)
}

func TestRegisterRecordsOutputDependencies(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	bucket, err := st.Register("aws:s3/bucket:Bucket", "assets", engine.Inputs{
		"bucket": "assets",
	})
	require.NoError(t, err)

	fn, err := st.Register("aws:lambda/function:Function", "handler", engine.Inputs{
		"name": "handler",
		"environment": map[string]any{
			"variables": map[string]any{
				"S3_BUCKET": bucket.Output("bucket"),
			},
		},
	})
	require.NoError(t, err)

	deps := fn.DependsOn()
	require.Len(t, deps, 1)
	assert.Same(t, bucket, deps[0])

	env := fn.RawOutput("environment").(map[string]any)
	vars := env["variables"].(map[string]any)
	assert.Equal(t, "assets", vars["S3_BUCKET"])
}

func TestRegisterResolvesResourceToID(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	api, err := st.Register("aws:apigateway/restApi:RestApi", "api", engine.Inputs{
		"name": "api",
	})
	require.NoError(t, err)

	method, err := st.Register("aws:apigateway/method:Method", "get-root", engine.Inputs{
		"restApi": api,
	})
	require.NoError(t, err)

	assert.Equal(t, "api-id", method.RawOutput("restApi"))
	deps := method.DependsOn()
	require.Len(t, deps, 1)
	assert.Same(t, api, deps[0])
}

func TestRegisterDependsOnOption(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	a, err := st.Register("aws:apigateway/integration:Integration", "a", engine.Inputs{})
	require.NoError(t, err)
	b, err := st.Register("aws:apigateway/integration:Integration", "b", engine.Inputs{})
	require.NoError(t, err)

	dep, err := st.Register("aws:apigateway/deployment:Deployment", "deploy", engine.Inputs{},
		engine.DependsOn(a, b))
	require.NoError(t, err)

	deps := dep.DependsOn()
	require.Len(t, deps, 2)
	assert.Same(t, a, deps[0])
	assert.Same(t, b, deps[1])
}

func TestRegisterDeduplicatesDependencies(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	bucket, err := st.Register("aws:s3/bucket:Bucket", "assets", engine.Inputs{"bucket": "assets"})
	require.NoError(t, err)

	res, err := st.Register("aws:s3/bucketVersioning:BucketVersioning", "versioning", engine.Inputs{
		"bucket": bucket.Output("bucket"),
		"arn":    bucket.Output("arn"),
	}, engine.DependsOn(bucket))
	require.NoError(t, err)

	assert.Len(t, res.DependsOn(), 1)
}

func TestDependsOnOrderIsStable(t *testing.T) {
	declare := func(t *testing.T) []string {
		t.Helper()
		st := engine.NewStack("dev", mock.New())

		a, err := st.Register("aws:s3/bucket:Bucket", "a", engine.Inputs{"bucket": "a"})
		require.NoError(t, err)
		b, err := st.Register("aws:s3/bucket:Bucket", "b", engine.Inputs{"bucket": "b"})
		require.NoError(t, err)
		c, err := st.Register("aws:s3/bucket:Bucket", "c", engine.Inputs{"bucket": "c"})
		require.NoError(t, err)

		fn, err := st.Register("aws:lambda/function:Function", "fn", engine.Inputs{
			"first":  a.Output("bucket"),
			"second": b.Output("bucket"),
			"third":  c.Output("bucket"),
		})
		require.NoError(t, err)

		names := make([]string, 0, 3)
		for _, dep := range fn.DependsOn() {
			names = append(names, dep.LogicalName())
		}
		return names
	}

	// Edges follow sorted input keys, so every run yields the same order.
	want := []string{"a", "b", "c"}
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, declare(t), "iteration %d", i)
	}
}

func TestRegisterBackendError(t *testing.T) {
	st := engine.NewStack("dev", failingBackend{mock.New()})

	_, err := st.Register("aws:s3/bucket:Bucket", "assets", engine.Inputs{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `registering aws:s3/bucket:Bucket "assets"`)
	assert.True(t, errors.Is(err, errBackend))
}

var errBackend = errors.New("backend unavailable")

type failingBackend struct {
	*mock.Backend
}

func (failingBackend) NewResource(kind, name string, inputs map[string]any) (string, map[string]any, error) {
	return "", nil, errBackend
}

func TestInvokeUnknownToken(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	_, err := st.Invoke("aws:index/getAvailabilityZones:getAvailabilityZones", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aws:index/getAvailabilityZones:getAvailabilityZones")
}

func TestExportResolvesAndPreservesOrder(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	bucket, err := st.Register("aws:s3/bucket:Bucket", "assets", engine.Inputs{"bucket": "assets"})
	require.NoError(t, err)

	st.Export("bucket_name", bucket.Output("bucket"))
	st.Export("region", "us-west-2")
	st.Export("backend_config", map[string]any{
		"bucket": bucket.Output("bucket"),
	})

	exports := st.Exports()
	require.Len(t, exports, 3)
	assert.Equal(t, "bucket_name", exports[0].Name)
	assert.Equal(t, "assets", exports[0].Value)
	assert.Equal(t, "region", exports[1].Name)
	assert.Equal(t, map[string]any{"bucket": "assets"}, exports[2].Value)
}

func TestResourcesReturnsRegistrationOrder(t *testing.T) {
	st := engine.NewStack("dev", mock.New())

	_, err := st.Register("aws:s3/bucket:Bucket", "first", engine.Inputs{})
	require.NoError(t, err)
	_, err = st.Register("aws:dynamodb/table:Table", "second", engine.Inputs{})
	require.NoError(t, err)

	resources := st.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, "first", resources[0].LogicalName())
	assert.Equal(t, "second", resources[1].LogicalName())
}
