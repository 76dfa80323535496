package api

import (
	"net/http"

	"pawresort/internal/availability"
	"pawresort/internal/metrics"
	"pawresort/internal/model"
	"pawresort/internal/tenant"
)

// ResourceResponse is one catalog entry, with an availability hint when a
// date was supplied.
type ResourceResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      model.ResourceType `json:"type"`
	MaxPets   int                `json:"maxPets"`
	Available *bool              `json:"available,omitempty"`
}

// handleListResources returns the tenant's active resources, optionally
// annotated with availability for a date.
// GET /api/resources?date=YYYY-MM-DD&type=KENNEL
func (s *HTTPServer) handleListResources(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("resources")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tenantID, err := tenant.IDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "tenant key required")
		return
	}

	resources, err := s.resources.ListResources(r.Context(), tenantID)
	if err != nil {
		s.logger.Error().Err(err).Str("tenant_id", tenantID).Msg("list resources failed")
		writeError(w, http.StatusInternalServerError, "failed to list resources")
		return
	}

	typeFilter := r.URL.Query().Get("type")
	filtered := make([]model.Resource, 0, len(resources))
	for _, res := range resources {
		if typeFilter != "" && string(res.Type) != typeFilter {
			continue
		}
		filtered = append(filtered, res)
	}

	out := make([]ResourceResponse, len(filtered))
	for i, res := range filtered {
		out[i] = ResourceResponse{
			ID:      res.ID,
			Name:    res.Name,
			Type:    res.Type,
			MaxPets: res.MaxPets,
		}
	}

	date := r.URL.Query().Get("date")
	degraded := false
	if date != "" && len(filtered) > 0 {
		ids := make([]string, len(filtered))
		for i, res := range filtered {
			ids[i] = res.ID
		}

		batch, err := s.engine.CheckResources(r.Context(), tenantID, availability.BatchRequest{
			ResourceIDs: ids,
			Date:        date,
		})
		if err != nil {
			s.writeCheckError(w, err)
			return
		}
		degraded = batch.Degraded
		for i := range out {
			available := batch.Resources[i].IsAvailable
			out[i].Available = &available
		}
	}

	resp := map[string]any{"resources": out}
	if degraded {
		resp["degraded"] = true
	}
	writeJSON(w, http.StatusOK, resp)
}
