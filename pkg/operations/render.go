package operations

import (
	"context"
	"errors"
	"fmt"

	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/render"
)

// Render generates configs for every host from its role template.
// Template directory problems are reported once, before any host runs.
func (r *Runner) Render(ctx context.Context, hosts []*inventory.Host) (*OperationResult, error) {
	if err := r.renderer.ValidateTemplatesDir(); err != nil {
		return nil, err
	}
	if err := r.renderer.EnsureOutputDir(); err != nil {
		return nil, err
	}

	result := r.orch.Run(ctx, "render", hosts, func(ctx context.Context, host *inventory.Host) *DeviceResult {
		path, err := r.renderer.RenderToFile(host)
		if errors.Is(err, render.ErrTemplateNotFound) {
			return Skipped(host.Name, err.Error())
		}
		if err != nil {
			return Failed(host.Name, err)
		}
		return Succeeded(host.Name, fmt.Sprintf("wrote %s", path))
	})
	return result, nil
}
