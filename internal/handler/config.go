package handler

import "net/http"

// ConfigHandler exposes the public client configuration.
type ConfigHandler struct {
	mapsAPIKey string
}

func NewConfigHandler(mapsAPIKey string) *ConfigHandler {
	return &ConfigHandler{mapsAPIKey: mapsAPIKey}
}

// Get handles GET /api/config
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"mapsApiKey": h.mapsAPIKey,
	})
}
