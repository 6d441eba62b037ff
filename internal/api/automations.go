package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthlabs/hearth-core/internal/automation"
)

// automationView is the JSON representation of a registered automation.
type automationView struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// handleListAutomations returns all registered automations.
func (s *Server) handleListAutomations(w http.ResponseWriter, _ *http.Request) {
	automations := s.core.Automations.All()
	views := make([]automationView, 0, len(automations))
	for _, a := range automations {
		views = append(views, automationView{
			Label: a.Label(),
			Kind:  automationKind(a),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"automations": views,
		"count":       len(views),
	})
}

// handlePerformAutomation manually fires the first automation with the
// given label, regardless of its schedule or trigger.
func (s *Server) handlePerformAutomation(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")

	if !s.core.Automations.Perform(label) {
		writeNotFound(w, "no automation with label: "+label)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"performed": label})
}

// automationKind names the concrete automation type for display.
func automationKind(a automation.Automation) string {
	switch a.(type) {
	case *automation.DailyAutomation:
		return "daily"
	case *automation.EventAutomation:
		return "event"
	case *automation.FixedAutomation:
		return "fixed"
	default:
		return "custom"
	}
}
