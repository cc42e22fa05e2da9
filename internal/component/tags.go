package component

import "github.com/Justash01/inventory-saver/internal/ecs"

const CTagPlayer ecs.ComponentType = 8

// TagPlayer marks a player-controlled entity. Players are never captured
// into snapshots.
type TagPlayer struct{}

func (TagPlayer) Type() ecs.ComponentType { return CTagPlayer }
