package dag

import (
	"context"
	"fmt"

	"github.com/vk/portfoliosim/internal/ctxlog"
	"github.com/vk/portfoliosim/internal/model"
)

// Build constructs a validated dependency graph over the portfolio's projects,
// one node per project and one edge per depends_on entry. A cyclic graph is
// rejected as a ValidationError before any sampling can start.
func Build(ctx context.Context, projects []model.Project) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)

	graph := New()
	for i := range projects {
		graph.AddNode(projects[i].ID)
	}
	logger.Debug("Project graph nodes created.", "node_count", graph.Len())

	for i := range projects {
		for _, upstream := range projects[i].DependsOn {
			if err := graph.AddEdge(upstream, projects[i].ID); err != nil {
				return nil, fmt.Errorf("linking project %q: %w", projects[i].Name, err)
			}
		}
	}

	if err := graph.DetectCycles(); err != nil {
		return nil, &model.ValidationError{Reason: err.Error()}
	}
	logger.Debug("Project graph cycle check passed.")

	return graph, nil
}
