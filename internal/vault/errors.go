package vault

import "errors"

var (
	// ErrInvalidLabel is returned for labels that are empty or contain whitespace.
	ErrInvalidLabel = errors.New("invalid label")

	// ErrDuplicateLabel is returned when saving under a label that is taken.
	ErrDuplicateLabel = errors.New("label already exists")

	// ErrNotFound is returned when loading or deleting a label that does not exist.
	ErrNotFound = errors.New("no saved inventory with that label")

	// ErrEmptySource is returned when saving with nothing in the inventory or gear.
	ErrEmptySource = errors.New("nothing to save")

	// ErrCarrierUnavailable is returned when the carrier could not be spawned or
	// located. No items have been moved when it is returned.
	ErrCarrierUnavailable = errors.New("carrier unavailable")

	// ErrCarrierTooSmall is returned when the carrier type has fewer slots than
	// the player inventory plus the reserved gear slots. Nothing is moved.
	ErrCarrierTooSmall = errors.New("carrier too small")

	// ErrNoRoom is returned when a saved stack would land past the end of the
	// player's inventory. Nothing is moved and the snapshot is kept.
	ErrNoRoom = errors.New("inventory too small for saved items")

	// ErrNoInventory is returned for players without an inventory container.
	ErrNoInventory = errors.New("player has no inventory")
)
