// Package mock provides a deterministic in-memory Backend.
//
// It returns canned AWS-shaped outputs (fixed account id, region, ARN
// formats) so stack programs can be exercised without live cloud calls, and
// it records every registration for inspection:
//
//	b := mock.New()
//	st := engine.NewStack("dev", b)
//	// ... run a stack program ...
//	b.Count("aws:apigateway/integration:Integration") // how many were declared
//
// The same backend powers the CLI preview, where provider-assigned values are
// placeholders by construction.
package mock

import (
	"fmt"

	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// Default identity values, matching the original test fixtures.
const (
	DefaultAccountID = "123456789012"
	DefaultRegion    = "us-west-2"
)

// Backend is a canned-value engine.Backend that tracks created resources.
type Backend struct {
	AccountID string
	Region    string

	created []string
	outputs map[string]map[string]any
}

var _ engine.Backend = (*Backend)(nil)

// New returns a Backend with the default account and region.
func New() *Backend {
	return &Backend{
		AccountID: DefaultAccountID,
		Region:    DefaultRegion,
		outputs:   make(map[string]map[string]any),
	}
}

// NewResource returns canned outputs for the given resource kind. Inputs are
// echoed into the outputs, then overlaid with provider-assigned attributes.
func (b *Backend) NewResource(kind, name string, inputs map[string]any) (string, map[string]any, error) {
	b.created = append(b.created, kind)

	outputs := make(map[string]any, len(inputs)+4)
	for k, v := range inputs {
		outputs[k] = v
	}

	id := name + "-id"
	switch kind {
	case "aws:s3/bucket:Bucket":
		bucket := stringInput(inputs, "bucket", name)
		id = bucket + "-id"
		outputs["bucket"] = bucket
		outputs["arn"] = "arn:aws:s3:::" + bucket
		outputs["region"] = b.Region

	case "aws:dynamodb/table:Table":
		table := stringInput(inputs, "name", name)
		id = table
		outputs["name"] = table
		outputs["arn"] = fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s", b.Region, b.AccountID, table)

	case "aws:iam/role:Role":
		role := stringInput(inputs, "name", name)
		id = role
		outputs["name"] = role
		outputs["arn"] = fmt.Sprintf("arn:aws:iam::%s:role/%s", b.AccountID, role)

	case "aws:lambda/function:Function":
		fn := stringInput(inputs, "name", name)
		id = fn
		arn := fmt.Sprintf("arn:aws:lambda:%s:%s:function:%s", b.Region, b.AccountID, fn)
		outputs["name"] = fn
		outputs["arn"] = arn
		outputs["invokeArn"] = fmt.Sprintf(
			"arn:aws:apigateway:%s:lambda:path/2015-03-31/functions/%s/invocations", b.Region, arn)

	case "aws:apigateway/restApi:RestApi":
		id = name + "-id"
		outputs["name"] = name
		outputs["rootResourceId"] = name + "-root-id"
		outputs["executionArn"] = fmt.Sprintf("arn:aws:execute-api:%s:%s:%s", b.Region, b.AccountID, id)

	case "aws:apigateway/stage:Stage":
		stage := stringInput(inputs, "stageName", name)
		restAPI := stringInput(inputs, "restApi", "mock-api-id")
		id = restAPI + "/" + stage
		outputs["stageName"] = stage
		outputs["invokeUrl"] = fmt.Sprintf("https://%s.execute-api.%s.amazonaws.com/%s", restAPI, b.Region, stage)
	}

	outputs["id"] = id
	b.outputs[name] = outputs
	return id, outputs, nil
}

// Call answers the provider data-source lookups stack programs use.
func (b *Backend) Call(token string, args map[string]any) (map[string]any, error) {
	switch token {
	case "aws:index/getCallerIdentity:getCallerIdentity":
		return map[string]any{
			"accountId": b.AccountID,
			"arn":       fmt.Sprintf("arn:aws:iam::%s:user/test-user", b.AccountID),
		}, nil
	case "aws:index/getRegion:getRegion":
		return map[string]any{"name": b.Region}, nil
	}
	return nil, fmt.Errorf("mock: unknown call token %q", token)
}

// Created returns the kinds of every resource declared, in order.
func (b *Backend) Created() []string {
	out := make([]string, len(b.created))
	copy(out, b.created)
	return out
}

// Count returns how many resources of the given kind were declared.
func (b *Backend) Count(kind string) int {
	n := 0
	for _, k := range b.created {
		if k == kind {
			n++
		}
	}
	return n
}

// Outputs returns the recorded outputs for a declaration name.
func (b *Backend) Outputs(name string) map[string]any {
	return b.outputs[name]
}

// Reset clears all tracking between test cases.
func (b *Backend) Reset() {
	b.created = nil
	b.outputs = make(map[string]map[string]any)
}

func stringInput(inputs map[string]any, key, fallback string) string {
	if v, ok := inputs[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
