package apigateway_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eddalmond/pulumi-tech-holiday/aws/apigateway"
	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/aws/lambda"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
	"github.com/eddalmond/pulumi-tech-holiday/engine/mock"
)

func testConfig() awsconf.Config {
	return awsconf.Config{
		StackName: "dev",
		AccountID: mock.DefaultAccountID,
		Region:    mock.DefaultRegion,
	}
}

func newTarget(t *testing.T, st *engine.Stack) *lambda.Function {
	t.Helper()
	role, err := st.Register("aws:iam/role:Role", "lambda-role", engine.Inputs{"name": "lambda-role"})
	require.NoError(t, err)
	fn, err := lambda.NewFunction(st, "api-lambda", lambda.FunctionArgs{
		RoleARN: role.Output("arn"),
		Runtime: "python3.13",
		Handler: "app.handler",
	})
	require.NoError(t, err)
	return fn
}

func TestNewRestApiDeclaresApiAndPermission(t *testing.T) {
	b := mock.New()
	st := engine.NewStack("dev", b)
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{
		Description: "Simple REST API",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, b.Count("aws:apigateway/restApi:RestApi"))
	assert.Equal(t, 1, b.Count("aws:lambda/permission:Permission"))
	assert.Equal(t, "api-api", api.Api().LogicalName())
	assert.Equal(t, "Simple REST API", api.Api().RawOutput("description"))

	// The invoke permission is scoped to every method and path of the API.
	perm := b.Outputs("api-api-lambda-permission")
	assert.Equal(t, "arn:aws:execute-api:us-west-2:123456789012:api-api-id/*/*", perm["sourceArn"])
	assert.Equal(t, "apigateway.amazonaws.com", perm["principal"])
	assert.Equal(t, "api-lambda", perm["function"])
}

func TestNewRestApiDefaultDescription(t *testing.T) {
	st := engine.NewStack("dev", mock.New())
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)
	assert.Equal(t, "api REST API", api.Api().RawOutput("description"))
}

func TestAddRootRoute(t *testing.T) {
	b := mock.New()
	st := engine.NewStack("dev", b)
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)

	require.NoError(t, api.AddRootRoute(apigateway.RouteOpts{}))

	// ANY on the root: one method, one integration, no extra resource.
	assert.Equal(t, 0, b.Count("aws:apigateway/resource:Resource"))
	assert.Equal(t, 1, b.Count("aws:apigateway/method:Method"))
	assert.Equal(t, 1, b.Count("aws:apigateway/integration:Integration"))

	method := b.Outputs("api-root-any-method")
	require.NotNil(t, method)
	assert.Equal(t, "ANY", method["httpMethod"])
	assert.Equal(t, "NONE", method["authorization"])
	assert.Equal(t, "api-api-root-id", method["resourceId"])

	integration := b.Outputs("api-root-any-method-integration")
	require.NotNil(t, integration)
	assert.Equal(t, "AWS_PROXY", integration["type"])
	assert.Equal(t, "POST", integration["integrationHttpMethod"])
	assert.Equal(t, fn.InvokeARN().Value(), integration["uri"])
}

func TestAddProxyRoute(t *testing.T) {
	b := mock.New()
	st := engine.NewStack("dev", b)
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)

	require.NoError(t, api.AddRoute("{proxy+}", apigateway.RouteOpts{}))

	resource := b.Outputs("api-resource-proxyplus")
	require.NotNil(t, resource)
	assert.Equal(t, "{proxy+}", resource["pathPart"])
	assert.Equal(t, "api-api-root-id", resource["parentId"])

	assert.Equal(t, 1, b.Count("aws:apigateway/method:Method"))
	assert.NotNil(t, b.Outputs("api-proxyplus-any-method"))
}

func TestAddRouteMultipleMethods(t *testing.T) {
	b := mock.New()
	st := engine.NewStack("dev", b)
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)

	require.NoError(t, api.AddRoute("items", apigateway.RouteOpts{
		Methods:       []string{"GET", "POST"},
		Authorization: "AWS_IAM",
	}))

	assert.Equal(t, 2, b.Count("aws:apigateway/method:Method"))
	assert.Equal(t, 2, b.Count("aws:apigateway/integration:Integration"))
	assert.Equal(t, "AWS_IAM", b.Outputs("api-items-get-method")["authorization"])
	assert.NotNil(t, b.Outputs("api-items-post-method"))
	assert.Len(t, api.Integrations(), 2)
}

func TestDeployDependsOnEveryIntegration(t *testing.T) {
	b := mock.New()
	st := engine.NewStack("dev", b)
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)
	require.NoError(t, api.AddRootRoute(apigateway.RouteOpts{}))
	require.NoError(t, api.AddRoute("{proxy+}", apigateway.RouteOpts{}))

	integrations := api.Integrations()
	require.Len(t, integrations, 2)

	stage, err := api.Deploy()
	require.NoError(t, err)

	var deployment *engine.Resource
	for _, res := range st.Resources() {
		if res.LogicalName() == "api-deployment" {
			deployment = res
		}
	}
	require.NotNil(t, deployment)

	deps := deployment.DependsOn()
	depSet := make(map[*engine.Resource]bool, len(deps))
	for _, d := range deps {
		depSet[d] = true
	}
	for _, integration := range integrations {
		assert.True(t, depSet[integration], "deployment should depend on %s", integration.LogicalName())
	}

	assert.Equal(t, "dev", stage.Name())
	assert.Equal(t, "Dev Stage", b.Outputs("api-stage")["tags"].(map[string]string)["Name"])
	assert.Equal(t, "https://api-api-id.execute-api.us-west-2.amazonaws.com/dev", stage.InvokeURL().Value())
}

func TestDeployWithoutRoutes(t *testing.T) {
	st := engine.NewStack("dev", mock.New())
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)

	_, err = api.Deploy()
	require.Error(t, err)

	var invalid *apigateway.InvalidStateError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "deploy", invalid.Op)
}

func TestDeployTwice(t *testing.T) {
	st := engine.NewStack("dev", mock.New())
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)
	require.NoError(t, api.AddRootRoute(apigateway.RouteOpts{}))

	_, err = api.Deploy()
	require.NoError(t, err)

	_, err = api.Deploy()
	require.Error(t, err)

	var invalid *apigateway.InvalidStateError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Reason, "already deployed")
}

func TestAddRouteAfterDeploy(t *testing.T) {
	b := mock.New()
	st := engine.NewStack("dev", b)
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)
	require.NoError(t, api.AddRootRoute(apigateway.RouteOpts{}))
	_, err = api.Deploy()
	require.NoError(t, err)
	before := b.Count("aws:apigateway/method:Method")

	err = api.AddRoute("late", apigateway.RouteOpts{})
	require.Error(t, err)
	var invalid *apigateway.InvalidStateError
	assert.True(t, errors.As(err, &invalid))

	err = api.AddRootRoute(apigateway.RouteOpts{})
	require.Error(t, err)
	assert.True(t, errors.As(err, &invalid))

	// The rejected routes declared nothing.
	assert.Equal(t, before, b.Count("aws:apigateway/method:Method"))
}

func TestEndpointURL(t *testing.T) {
	st := engine.NewStack("dev", mock.New())
	fn := newTarget(t, st)

	api, err := apigateway.NewRestApi(st, "api", fn, "dev", testConfig(), apigateway.RestApiArgs{})
	require.NoError(t, err)

	_, err = api.EndpointURL()
	require.Error(t, err)
	var invalid *apigateway.InvalidStateError
	assert.True(t, errors.As(err, &invalid))

	require.NoError(t, api.AddRootRoute(apigateway.RouteOpts{}))
	_, err = api.Deploy()
	require.NoError(t, err)

	url, err := api.EndpointURL()
	require.NoError(t, err)
	assert.Equal(t, "https://api-api-id.execute-api.us-west-2.amazonaws.com/dev/", url.Value())
}

func TestNewLambdaRestApi(t *testing.T) {
	b := mock.New()
	st := engine.NewStack("dev", b)
	fn := newTarget(t, st)

	api, stage, url, err := apigateway.NewLambdaRestApi(st, "api", fn, "dev", testConfig(), apigateway.LambdaRestApiArgs{
		Description: "Simple REST API with Lambda backend",
		RootRoute:   true,
		ProxyRoute:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, api)
	require.NotNil(t, stage)

	assert.Equal(t, "https://api-api-id.execute-api.us-west-2.amazonaws.com/dev/", url.Value())

	assert.Equal(t, 1, b.Count("aws:apigateway/restApi:RestApi"))
	assert.Equal(t, 1, b.Count("aws:lambda/permission:Permission"))
	assert.Equal(t, 1, b.Count("aws:apigateway/resource:Resource"))
	assert.Equal(t, 2, b.Count("aws:apigateway/method:Method"))
	assert.Equal(t, 2, b.Count("aws:apigateway/integration:Integration"))
	assert.Equal(t, 1, b.Count("aws:apigateway/deployment:Deployment"))
	assert.Equal(t, 1, b.Count("aws:apigateway/stage:Stage"))
}
