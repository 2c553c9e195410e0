package fortune

import (
	"strings"

	"golang.org/x/text/cases"
)

const (
	SkySceneID           = "sky"
	EmeraldForestSceneID = "emerald_forest"

	emeraldMarker       = "翠林"
	emeraldMarkerFolded = "emerald"
)

// IsEmeraldClass reports whether machine is the emerald variant: its label
// carries the emerald marker, or its trimmed case-folded form contains
// "emerald".
func IsEmeraldClass(machine string) bool {
	if strings.Contains(machine, emeraldMarker) {
		return true
	}
	// Casers hold state, so each call gets its own.
	folded := cases.Fold().String(strings.TrimSpace(machine))
	return strings.Contains(folded, emeraldMarkerFolded)
}

// FilterScenes returns the scenes machine may land on, in catalog order.
// Emerald-class machines lose the sky scene, all others lose the emerald
// forest.
func FilterScenes(machine string, scenes []Scene) ([]Scene, error) {
	excluded := EmeraldForestSceneID
	if IsEmeraldClass(machine) {
		excluded = SkySceneID
	}

	filtered := make([]Scene, 0, len(scenes))
	for _, s := range scenes {
		if s.ID != excluded {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return nil, &ConfigurationError{Reason: "no eligible scenes"}
	}
	return filtered, nil
}
