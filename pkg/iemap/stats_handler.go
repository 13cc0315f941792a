package iemap

import (
	"context"
	"net/http"

	"github.com/hashicorp/go-hclog"

	"github.com/enea-iemap/iemap-mi/pkg/models"
)

// StatsHandler reads platform-wide statistics. It works without
// authentication.
type StatsHandler struct {
	api    *apiClient
	logger hclog.Logger
}

// Get returns aggregate project, user and file counts.
func (h *StatsHandler) Get(ctx context.Context) (*models.StatsData, error) {
	var resp models.StatsResponse
	if err := h.api.do(ctx, request{
		method: http.MethodGet,
		path:   statsPath,
	}, &resp); err != nil {
		return nil, err
	}

	h.logger.Debug("fetched stats", "total_projects", resp.Data.TotalProjects)
	return &resp.Data, nil
}
