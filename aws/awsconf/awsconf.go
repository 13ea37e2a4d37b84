// Package awsconf resolves the deployment context a stack program needs for
// deterministic naming: the stack name, the caller's account id, and the
// active region.
//
// The context is loaded once per program and passed explicitly to every
// component that derives names from it.
package awsconf

import (
	"fmt"

	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// Config is the immutable deployment context.
type Config struct {
	StackName string
	AccountID string
	Region    string
}

// Load resolves the config through the stack's backend identity and region
// lookups.
func Load(st *engine.Stack) (Config, error) {
	identity, err := st.Invoke("aws:index/getCallerIdentity:getCallerIdentity", nil)
	if err != nil {
		return Config{}, fmt.Errorf("awsconf: caller identity: %w", err)
	}
	region, err := st.Invoke("aws:index/getRegion:getRegion", nil)
	if err != nil {
		return Config{}, fmt.Errorf("awsconf: region: %w", err)
	}

	cfg := Config{
		StackName: st.Name(),
		AccountID: stringValue(identity, "accountId"),
		Region:    stringValue(region, "name"),
	}
	if cfg.AccountID == "" || cfg.Region == "" {
		return Config{}, fmt.Errorf("awsconf: backend returned empty account id or region")
	}
	return cfg, nil
}

// DefaultTags returns the standard tag set for resources in this stack.
// Environment and purpose are added when non-empty.
func (c Config) DefaultTags(environment, purpose string) map[string]string {
	tags := map[string]string{
		"ManagedBy": "Pulumi",
		"Stack":     c.StackName,
		"Region":    c.Region,
	}
	if environment != "" {
		tags["Environment"] = environment
	}
	if purpose != "" {
		tags["Purpose"] = purpose
	}
	return tags
}

func stringValue(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
