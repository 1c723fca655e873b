package domain

// StateStore is the flat key-value persistence contract. Implementations
// back it with an embedded database or, in degraded mode, process memory.
type StateStore interface {
	// LocalCatalog reports the cached catalog state. A catalog that was
	// never downloaded yields the zero state, not an error.
	LocalCatalog() (LocalCatalogState, error)
	// SaveCatalog persists the downloaded catalog blob and the state
	// parsed from it.
	SaveCatalog(blob []byte, state LocalCatalogState) error
	Dismissed() (DismissalSet, error)
	RecordDismissal(id string) (DismissalSet, error)
	AutoUpdateDisabled() (bool, error)
	SetAutoUpdateDisabled(disabled bool) error
	Close() error
}
