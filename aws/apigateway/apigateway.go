// Package apigateway composes a REST API over a Lambda proxy integration.
//
// A RestApi is built incrementally: routes and methods accumulate while the
// API is in the building state. It is then finalized exactly once with Deploy,
// which declares a deployment depending on every registered integration. A
// deployment can therefore never go live with a route missing.
//
//	api, err := apigateway.NewRestApi(st, "api", fn, "dev", cfg, apigateway.RestApiArgs{})
//	err = api.AddRootRoute(apigateway.RouteOpts{})
//	err = api.AddRoute("{proxy+}", apigateway.RouteOpts{})
//	stage, err := api.Deploy()
//	url, err := api.EndpointURL()
package apigateway

import (
	"fmt"
	"strings"

	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// InvokeTarget is the compute target a composed API proxies to.
type InvokeTarget interface {
	// FunctionName identifies the target for the invoke permission.
	FunctionName() engine.StringOutput
	// InvokeARN is the API Gateway invocation ARN of the target.
	InvokeARN() engine.StringOutput
}

// InvalidStateError reports an operation attempted in the wrong lifecycle
// state, such as adding a route after Deploy.
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("apigateway: %s: %s", e.Op, e.Reason)
}

// RestApiArgs configures the API declaration.
type RestApiArgs struct {
	// Description of the API. Defaults to "{name} REST API".
	Description string
	// Tags applied to the API and its stage.
	Tags map[string]string
}

// RouteOpts configures one route registration.
type RouteOpts struct {
	// Methods are the HTTP verbs to bind. Empty defaults to ["ANY"].
	Methods []string
	// Authorization is the method authorization type. Empty defaults to
	// "NONE".
	Authorization string
}

// Stage is the deployed stage produced by Deploy.
type Stage struct {
	res       *engine.Resource
	stageName string
}

// Resource returns the underlying stage declaration.
func (s *Stage) Resource() *engine.Resource { return s.res }

// Name returns the stage label.
func (s *Stage) Name() string { return s.stageName }

// InvokeURL returns the stage invoke URL assigned by the provider.
func (s *Stage) InvokeURL() engine.StringOutput { return s.res.Output("invokeUrl") }

// RestApi accumulates routes against a Lambda target until deployed.
type RestApi struct {
	st        *engine.Stack
	name      string
	stageName string
	region    string
	target    InvokeTarget
	tags      map[string]string

	api          *engine.Resource
	permission   *engine.Resource
	integrations []*engine.Resource

	stage *Stage
}

// NewRestApi declares the REST API and immediately grants the API Gateway
// principal permission to invoke the target. The API starts in the building
// state.
func NewRestApi(st *engine.Stack, name string, target InvokeTarget, stageName string, cfg awsconf.Config, args RestApiArgs) (*RestApi, error) {
	description := args.Description
	if description == "" {
		description = name + " REST API"
	}
	tags := args.Tags
	if tags == nil {
		tags = map[string]string{}
	}

	api, err := st.Register("aws:apigateway/restApi:RestApi", name+"-api", engine.Inputs{
		"description": description,
		"tags":        tags,
	})
	if err != nil {
		return nil, err
	}

	permission, err := st.Register("aws:lambda/permission:Permission", name+"-api-lambda-permission", engine.Inputs{
		"action":    "lambda:InvokeFunction",
		"function":  target.FunctionName(),
		"principal": "apigateway.amazonaws.com",
		"sourceArn": engine.Concat(api.Output("executionArn"), "/*/*"),
	})
	if err != nil {
		return nil, err
	}

	return &RestApi{
		st:         st,
		name:       name,
		stageName:  stageName,
		region:     cfg.Region,
		target:     target,
		tags:       tags,
		api:        api,
		permission: permission,
	}, nil
}

// Api returns the underlying REST API declaration.
func (a *RestApi) Api() *engine.Resource { return a.api }

// Integrations returns the integrations registered so far.
func (a *RestApi) Integrations() []*engine.Resource {
	out := make([]*engine.Resource, len(a.integrations))
	copy(out, a.integrations)
	return out
}

// AddRootRoute binds methods to the root resource (/). Valid only before
// Deploy.
func (a *RestApi) AddRootRoute(opts RouteOpts) error {
	if a.stage != nil {
		return &InvalidStateError{Op: "add root route", Reason: "api already deployed"}
	}
	for _, method := range methodsOrDefault(opts.Methods) {
		if err := a.addMethod(a.api.Output("rootResourceId"), method, authOrDefault(opts.Authorization), "root"); err != nil {
			return err
		}
	}
	return nil
}

// AddRoute binds methods to a path under the root, typically the catch-all
// "{proxy+}" pattern. Valid only before Deploy.
func (a *RestApi) AddRoute(pathPart string, opts RouteOpts) error {
	if a.stage != nil {
		return &InvalidStateError{Op: "add route", Reason: "api already deployed"}
	}

	routeName := sanitizePath(pathPart)
	resource, err := a.st.Register("aws:apigateway/resource:Resource",
		fmt.Sprintf("%s-resource-%s", a.name, routeName), engine.Inputs{
			"restApi":  a.api,
			"parentId": a.api.Output("rootResourceId"),
			"pathPart": pathPart,
		})
	if err != nil {
		return err
	}

	for _, method := range methodsOrDefault(opts.Methods) {
		if err := a.addMethod(resource.IDOutput(), method, authOrDefault(opts.Authorization), routeName); err != nil {
			return err
		}
	}
	return nil
}

// addMethod declares one method plus its proxy integration and records the
// integration for the deployment dependency set.
func (a *RestApi) addMethod(resourceID engine.StringOutput, httpMethod, authorization, routeName string) error {
	methodName := fmt.Sprintf("%s-%s-%s-method", a.name, routeName, strings.ToLower(httpMethod))

	method, err := a.st.Register("aws:apigateway/method:Method", methodName, engine.Inputs{
		"restApi":       a.api,
		"resourceId":    resourceID,
		"httpMethod":    httpMethod,
		"authorization": authorization,
	})
	if err != nil {
		return err
	}

	integration, err := a.st.Register("aws:apigateway/integration:Integration", methodName+"-integration", engine.Inputs{
		"restApi":               a.api,
		"resourceId":            resourceID,
		"httpMethod":            method.Output("httpMethod"),
		"integrationHttpMethod": "POST",
		"type":                  "AWS_PROXY",
		"uri":                   a.target.InvokeARN(),
	})
	if err != nil {
		return err
	}

	a.integrations = append(a.integrations, integration)
	return nil
}

// Deploy finalizes the API: it declares a deployment depending on every
// registered integration, then the stage. Deploy is terminal: calling it
// twice, or with no routes registered, fails with *InvalidStateError.
func (a *RestApi) Deploy() (*Stage, error) {
	if a.stage != nil {
		return nil, &InvalidStateError{Op: "deploy", Reason: "api already deployed"}
	}
	if len(a.integrations) == 0 {
		return nil, &InvalidStateError{Op: "deploy", Reason: "no routes registered"}
	}

	deployment, err := a.st.Register("aws:apigateway/deployment:Deployment", a.name+"-deployment", engine.Inputs{
		"restApi": a.api,
	}, engine.DependsOn(a.integrations...))
	if err != nil {
		return nil, err
	}

	stageTags := make(map[string]string, len(a.tags)+1)
	for k, v := range a.tags {
		stageTags[k] = v
	}
	stageTags["Name"] = titleCase(a.stageName) + " Stage"

	stageRes, err := a.st.Register("aws:apigateway/stage:Stage", a.name+"-stage", engine.Inputs{
		"restApi":    a.api,
		"deployment": deployment,
		"stageName":  a.stageName,
		"tags":       stageTags,
	})
	if err != nil {
		return nil, err
	}

	a.stage = &Stage{res: stageRes, stageName: a.stageName}
	return a.stage, nil
}

// EndpointURL derives the stage endpoint from the API id, the region, and
// the stage label. Valid only after Deploy.
func (a *RestApi) EndpointURL() (engine.StringOutput, error) {
	if a.stage == nil {
		return engine.StringOutput{}, &InvalidStateError{Op: "endpoint url", Reason: "api not deployed"}
	}
	return engine.Concat(
		"https://",
		a.api.IDOutput(),
		".execute-api.",
		a.region,
		".amazonaws.com/",
		a.stage.Name(),
		"/",
	), nil
}

func methodsOrDefault(methods []string) []string {
	if len(methods) == 0 {
		return []string{"ANY"}
	}
	return methods
}

func authOrDefault(authorization string) string {
	if authorization == "" {
		return "NONE"
	}
	return authorization
}

// sanitizePath turns a path pattern into a declaration-name fragment, e.g.
// "{proxy+}" -> "proxyplus".
func sanitizePath(pathPart string) string {
	replacer := strings.NewReplacer("{", "", "}", "", "+", "plus", "/", "-")
	return replacer.Replace(pathPart)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
