package domain

// FontScale is the accessibility font sizing step.
type FontScale string

const (
	FontScaleNormal FontScale = "normal"
	FontScaleLarge  FontScale = "large"
	FontScaleXLarge FontScale = "xlarge"
)

// DisplayPreferences is an explicit per-user rendering configuration,
// passed to views instead of living in ambient global state. Persistence
// is delegated to a key-value collaborator with explicit load/save.
type DisplayPreferences struct {
	HighContrast bool      `json:"highContrast"`
	FontScale    FontScale `json:"fontScale"`
}

// DefaultDisplayPreferences is what a user gets before saving anything.
func DefaultDisplayPreferences() DisplayPreferences {
	return DisplayPreferences{FontScale: FontScaleNormal}
}
