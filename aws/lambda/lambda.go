// Package lambda declares Lambda functions.
//
// Packaging and upload of the code archive belong to the deployment engine;
// the declaration carries an opaque archive reference.
package lambda

import (
	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// FunctionArgs configures a function declaration.
type FunctionArgs struct {
	// RoleARN is the execution role ARN.
	RoleARN engine.StringOutput
	// Runtime is the Lambda runtime identifier (e.g. "python3.13").
	Runtime string
	// Handler is the entrypoint within the archive.
	Handler string
	// CodeArchive is the path or reference to the code archive. The
	// deployment engine resolves and uploads it.
	CodeArchive string
	// Environment variables. Values may be strings or StringOutputs, so a
	// function can carry references to the table and bucket it uses.
	Environment map[string]any
	// Tags to apply to the function.
	Tags map[string]string
}

// Function wraps a declared Lambda function.
type Function struct {
	res *engine.Resource
}

// Resource returns the underlying declaration.
func (f *Function) Resource() *engine.Resource { return f.res }

// FunctionName returns the function name as a StringOutput.
func (f *Function) FunctionName() engine.StringOutput { return f.res.Output("name") }

// ARN returns the function ARN as a StringOutput.
func (f *Function) ARN() engine.StringOutput { return f.res.Output("arn") }

// InvokeARN returns the API Gateway invocation ARN as a StringOutput.
func (f *Function) InvokeARN() engine.StringOutput { return f.res.Output("invokeArn") }

// NewFunction declares a Lambda function.
func NewFunction(st *engine.Stack, name string, args FunctionArgs) (*Function, error) {
	env := make(map[string]any, len(args.Environment))
	for k, v := range args.Environment {
		env[k] = v
	}

	res, err := st.Register("aws:lambda/function:Function", name, engine.Inputs{
		"name":    name,
		"role":    args.RoleARN,
		"runtime": args.Runtime,
		"handler": args.Handler,
		"code":    args.CodeArchive,
		"environment": map[string]any{
			"variables": env,
		},
		"tags": args.Tags,
	})
	if err != nil {
		return nil, err
	}
	return &Function{res: res}, nil
}
