package snapshot

import "strings"

// Separator joins the player id and the label in a key.
const Separator = ":"

// Key addresses one saved inventory: "{playerId}:{label}".
type Key struct {
	PlayerID string
	Label    string
}

// NewKey builds the key for a player's label.
func NewKey(playerID, label string) Key { return Key{PlayerID: playerID, Label: label} }

func (k Key) String() string { return k.PlayerID + Separator + k.Label }

// Prefix returns the key prefix shared by every snapshot of one player.
func Prefix(playerID string) string { return playerID + Separator }

// ParseKey splits a raw key at the first separator. Player ids never contain
// the separator; labels may.
func ParseKey(raw string) (Key, bool) {
	playerID, label, ok := strings.Cut(raw, Separator)
	if !ok || playerID == "" {
		return Key{}, false
	}
	return Key{PlayerID: playerID, Label: label}, true
}
