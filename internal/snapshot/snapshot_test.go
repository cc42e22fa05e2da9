package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Justash01/inventory-saver/internal/component"
	"github.com/Justash01/inventory-saver/internal/snapshot"
	"github.com/Justash01/inventory-saver/internal/world"
)

func Test_Key_RoundTrip(t *testing.T) {
	key := snapshot.NewKey("6f1c", "pvp:kit")

	parsed, ok := snapshot.ParseKey(key.String())

	assert.True(t, ok)
	assert.Equal(t, "6f1c:pvp:kit", key.String())
	assert.Equal(t, key, parsed, "label keeps everything after the first separator")
	assert.Equal(t, "6f1c:", snapshot.Prefix("6f1c"))
}

func Test_ParseKey_Rejects_MissingPlayer(t *testing.T) {
	_, ok := snapshot.ParseKey(":label")
	assert.False(t, ok)

	_, ok = snapshot.ParseKey("nolabel")
	assert.False(t, ok)
}

func Test_Decode_Rejects_GarbageAndOtherVersions(t *testing.T) {
	_, err := snapshot.Decode([]byte("{not json"))
	assert.ErrorIs(t, err, snapshot.ErrInvalidBlob)

	_, err = snapshot.Decode([]byte(`{"version":99,"key":"a:b"}`))
	assert.ErrorIs(t, err, snapshot.ErrUnsupportedVersion)
}

func Test_Decode_Rejects_OversizedContainer(t *testing.T) {
	_, err := snapshot.Decode([]byte(`{"version":1,"key":"a:b","entities":[{"type":"storage:entity","size":2000000000}]}`))
	assert.ErrorIs(t, err, snapshot.ErrInvalidBlob)

	_, err = snapshot.Decode([]byte(`{"version":1,"key":"a:b","entities":[{"type":"storage:entity","size":-1}]}`))
	assert.ErrorIs(t, err, snapshot.ErrInvalidBlob)
}

func Test_Encode_Decode(t *testing.T) {
	in := snapshot.Snapshot{
		Key:   "p:kit",
		Realm: world.Overworld,
		Size:  [3]int{1, 1, 1},
		Entities: []world.EntityState{{
			TypeID: world.DefaultCarrierType,
			Size:   41,
			Slots:  []world.SlotState{{Slot: 2, Item: component.ItemStack{TypeID: "minecraft:arrow", Amount: 64}}},
		}},
	}

	blob, err := snapshot.Encode(in)
	require.NoError(t, err)
	out, err := snapshot.Decode(blob)
	require.NoError(t, err)

	assert.Equal(t, snapshot.FormatVersion, out.Version)
	assert.Equal(t, in.Entities, out.Entities)
}

func Test_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	b := snapshot.NewMemoryBackend()

	require.NoError(t, b.Put(ctx, "p:b", []byte("1")))
	require.NoError(t, b.Put(ctx, "p:a", []byte("2")))
	require.NoError(t, b.Put(ctx, "q:a", []byte("3")))

	assert.ErrorIs(t, b.Put(ctx, "p:a", []byte("x")), snapshot.ErrExists)

	keys, err := b.Keys(ctx, "p:")
	require.NoError(t, err)
	assert.Equal(t, []string{"p:a", "p:b"}, keys)

	require.NoError(t, b.Delete(ctx, "p:a"))
	_, err = b.Get(ctx, "p:a")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
	assert.ErrorIs(t, b.Delete(ctx, "p:a"), snapshot.ErrNotFound)
}

func newStore(t *testing.T) (*snapshot.Store, *world.World) {
	t.Helper()
	w := world.New()
	return snapshot.NewStore(w, snapshot.NewMemoryBackend(), snapshot.NewMemoryBackend(), nil), w
}

func Test_Store_Create_Place_Delete(t *testing.T) {
	// setup
	ctx := context.Background()
	store, w := newStore(t)
	pos := component.Position{Realm: world.Overworld, X: 3.5, Y: 319, Z: 8.5}

	// arrange
	id, err := w.Spawn(world.DefaultCarrierType, pos)
	require.NoError(t, err)
	w.Container(id).SetItem(0, component.ItemStack{TypeID: "minecraft:bow", Amount: 1})

	// act
	require.NoError(t, store.Create(ctx, "p:bow", world.RegionAt(pos), snapshot.Durable))
	w.Remove(id)
	ids, err := store.Place(ctx, "p:bow", pos)

	// assert
	require.NoError(t, err)
	require.Len(t, ids, 1)
	item, ok := w.Container(ids[0]).Item(0)
	assert.True(t, ok)
	assert.Equal(t, "minecraft:bow", item.TypeID)

	exists, err := store.Exists(ctx, "p:bow")
	require.NoError(t, err)
	assert.True(t, exists, "placing must not consume the snapshot")

	require.NoError(t, store.Delete(ctx, "p:bow"))
	exists, err = store.Exists(ctx, "p:bow")
	require.NoError(t, err)
	assert.False(t, exists)
}

func Test_Store_Create_Rejects_Duplicate_Across_Modes(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	pos := component.Position{Realm: world.Overworld}

	require.NoError(t, store.Create(ctx, "p:kit", world.RegionAt(pos), snapshot.Transient))
	err := store.Create(ctx, "p:kit", world.RegionAt(pos), snapshot.Durable)

	assert.ErrorIs(t, err, snapshot.ErrExists)
}

func Test_Store_Keys_Merges_Backends(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	r := world.RegionAt(component.Position{Realm: world.Overworld})

	require.NoError(t, store.Create(ctx, "p:b", r, snapshot.Durable))
	require.NoError(t, store.Create(ctx, "p:a", r, snapshot.Transient))
	require.NoError(t, store.Create(ctx, "other:c", r, snapshot.Durable))

	keys, err := store.Keys(ctx, snapshot.Prefix("p"))

	require.NoError(t, err)
	assert.Equal(t, []string{"p:a", "p:b"}, keys)
}

func Test_Store_Place_Missing(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Place(context.Background(), "p:none", component.Position{})

	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}
