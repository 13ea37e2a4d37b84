// Package stacks holds the deployment programs.
//
// The stack name selects which program runs: the literal "bootstrap" deploys
// the state-storage stack, any other name deploys the application stack.
package stacks

import (
	"github.com/eddalmond/pulumi-tech-holiday/aws/awsconf"
	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// BootstrapStackName selects the bootstrap program.
const BootstrapStackName = "bootstrap"

// Deploy runs the program selected by the stack name.
func Deploy(st *engine.Stack, cfg awsconf.Config) error {
	if cfg.StackName == BootstrapStackName {
		return Bootstrap(st, cfg)
	}
	return Application(st, cfg)
}
