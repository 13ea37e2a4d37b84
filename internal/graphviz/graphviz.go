// Package graphviz renders a stack's declared dependency graph in DOT or
// Mermaid format.
package graphviz

import (
	"io"
	"strings"

	"github.com/emicklei/dot"

	"github.com/eddalmond/pulumi-tech-holiday/engine"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator renders dependency graphs from stack declarations.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByService groups resources by AWS service.
	ClusterByService bool
}

// Generate renders the dependency graph of the declared resources to w.
// Edges point from a resource to what it depends on.
func (g *Generator) Generate(resources []*engine.Resource, w io.Writer) error {
	graph := g.buildGraph(resources)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(resources []*engine.Resource) (string, error) {
	var sb strings.Builder
	if err := g.Generate(resources, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(resources []*engine.Resource) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	if g.ClusterByService {
		g.addClusteredNodes(graph, resources)
	} else {
		g.addNodes(graph, resources)
	}

	for _, res := range resources {
		for _, dep := range res.DependsOn() {
			from := graph.Node(res.LogicalName())
			to := graph.Node(dep.LogicalName())
			graph.Edge(from, to)
		}
	}

	return graph
}

// addNodes adds resource nodes without clustering.
func (g *Generator) addNodes(graph *dot.Graph, resources []*engine.Resource) {
	for _, res := range resources {
		n := graph.Node(res.LogicalName())
		n.Label(res.LogicalName() + "\\n[" + shortKind(res.Kind()) + "]")
	}
}

// addClusteredNodes adds resource nodes grouped by AWS service.
func (g *Generator) addClusteredNodes(graph *dot.Graph, resources []*engine.Resource) {
	serviceResources := make(map[string][]*engine.Resource)
	var services []string
	for _, res := range resources {
		service := extractService(res.Kind())
		if _, seen := serviceResources[service]; !seen {
			services = append(services, service)
		}
		serviceResources[service] = append(serviceResources[service], res)
	}

	for _, service := range services {
		members := serviceResources[service]
		if len(members) > 1 {
			cluster := graph.Subgraph("cluster_"+service, dot.ClusterOption{})
			cluster.Attr("label", service)
			cluster.Attr("style", "rounded")
			cluster.Attr("bgcolor", "lightyellow")
			for _, res := range members {
				n := cluster.Node(res.LogicalName())
				n.Label(res.LogicalName() + "\\n[" + shortKind(res.Kind()) + "]")
			}
		} else {
			for _, res := range members {
				n := graph.Node(res.LogicalName())
				n.Label(res.LogicalName() + "\\n[" + shortKind(res.Kind()) + "]")
			}
		}
	}
}

// extractService extracts the service name from a resource kind.
// e.g. "aws:s3/bucket:Bucket" -> "S3"
func extractService(kind string) string {
	parts := strings.Split(kind, ":")
	if len(parts) < 2 {
		return "Other"
	}
	module := parts[1]
	if i := strings.Index(module, "/"); i >= 0 {
		module = module[:i]
	}
	return strings.ToUpper(module)
}

// shortKind extracts the type name from a resource kind.
// e.g. "aws:s3/bucket:Bucket" -> "s3.Bucket"
func shortKind(kind string) string {
	parts := strings.Split(kind, ":")
	if len(parts) != 3 {
		return kind
	}
	module := parts[1]
	if i := strings.Index(module, "/"); i >= 0 {
		module = module[:i]
	}
	return module + "." + parts[2]
}
