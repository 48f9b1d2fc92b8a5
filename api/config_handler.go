package api

import (
	"net/http"

	"github.com/smartb3/smartb3/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config   *config.Config         `json:"config"`
	Settings []config.SettingStatus `json:"settings"`
}

// handleGetConfig returns the running configuration. The backend token is
// excluded from the config by its json tag and only reported masked.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:   s.cfg,
			Settings: config.CheckSettings(s.cfg),
		},
	})
}
