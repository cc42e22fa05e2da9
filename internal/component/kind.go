package component

import "github.com/Justash01/inventory-saver/internal/ecs"

const CKind ecs.ComponentType = 5

// Kind records the entity type identifier an entity was spawned as,
// e.g. "storage:entity".
type Kind struct {
	TypeID string
}

func (Kind) Type() ecs.ComponentType { return CKind }
