package service

// SaveResult tells an insert from an update.
type SaveResult int

const (
	SavedNew     SaveResult = 1
	SavedUpdated SaveResult = 2
)

// AttributeListOptions filters and pages attribute listings.
type AttributeListOptions struct {
	Bundle string
	// Published restricts the listing to one publishing state when set.
	Published *bool
	// Langcode selects the translation to show; the default translation is
	// used for attributes without one.
	Langcode string
	// OrderBy is "id" (default) or "weight".
	OrderBy string
	Limit   int
	Offset  int
}
