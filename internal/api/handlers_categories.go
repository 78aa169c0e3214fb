package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/texgraph/internal/category"
)

// handleCategories returns the legend: every canonical kind with its alias
// set and visual attributes, in canonical order.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Kind    category.Kind  `json:"kind"`
		Aliases []string       `json:"aliases"`
		Style   category.Style `json:"style"`
	}

	entries := make([]entry, 0, len(category.Order))
	for _, kind := range category.Order {
		entries = append(entries, entry{
			Kind:    kind,
			Aliases: s.table.Aliases(kind),
			Style:   s.table.Style(kind),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"categories": entries})
}
