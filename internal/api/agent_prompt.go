package api

import (
	"encoding/json"
	"net/http"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/prompt"
)

type agentPromptResponse struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

func (s *Server) getAgentPrompt(w http.ResponseWriter, r *http.Request) {
	content, source := prompt.System()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(agentPromptResponse{Content: content, Source: source})
}
