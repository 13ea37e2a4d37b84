package apigateway

import (
	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// LambdaRestApiArgs configures the convenience constructor.
type LambdaRestApiArgs struct {
	// Description of the API.
	Description string
	// RootRoute binds ANY on the root resource (/).
	RootRoute bool
	// ProxyRoute binds ANY on the catch-all "{proxy+}" path.
	ProxyRoute bool
	// Tags applied to the API and stage.
	Tags map[string]string
}

// NewLambdaRestApi composes a REST API with the common route layout (root
// and/or catch-all proxy, ANY verb), deploys it, and returns the api, the
// stage, and the endpoint URL.
func NewLambdaRestApi(st *engine.Stack, name string, target InvokeTarget, stageName string, cfg awsconf.Config, args LambdaRestApiArgs) (*RestApi, *Stage, engine.StringOutput, error) {
	api, err := NewRestApi(st, name, target, stageName, cfg, RestApiArgs{
		Description: args.Description,
		Tags:        args.Tags,
	})
	if err != nil {
		return nil, nil, engine.StringOutput{}, err
	}

	if args.RootRoute {
		if err := api.AddRootRoute(RouteOpts{}); err != nil {
			return nil, nil, engine.StringOutput{}, err
		}
	}
	if args.ProxyRoute {
		if err := api.AddRoute("{proxy+}", RouteOpts{}); err != nil {
			return nil, nil, engine.StringOutput{}, err
		}
	}

	stage, err := api.Deploy()
	if err != nil {
		return nil, nil, engine.StringOutput{}, err
	}

	url, err := api.EndpointURL()
	if err != nil {
		return nil, nil, engine.StringOutput{}, err
	}
	return api, stage, url, nil
}
