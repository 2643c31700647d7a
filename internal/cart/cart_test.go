package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cura-service/internal/stores/localdisk"
)

type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string][]byte{}}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return value, nil
}

func (m *memStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func candidate(id string, price int64, stock int) Candidate {
	return Candidate{
		ProductID: id,
		Name:      "med-" + id,
		Price:     price,
		Image:     "https://img.example/" + id,
		Stock:     stock,
	}
}

func newTestStore(t *testing.T) (*Store, *memStorage) {
	t.Helper()
	storage := newMemStorage()
	store, err := NewStore(storage)
	require.NoError(t, err)
	return store, storage
}

func TestNewStoreRequiresStorage(t *testing.T) {
	_, err := NewStore(nil)
	require.Error(t, err)
}

func TestAddDistinctProductsKeepsInsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)

	ids := []string{"c", "a", "b", "d"}
	for _, id := range ids {
		require.NoError(t, store.AddItem(candidate(id, 10, 5)))
	}

	lines := store.Lines()
	require.Len(t, lines, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, lines[i].ProductID)
		assert.Equal(t, 1, lines[i].Quantity)
	}
}

func TestRepeatedAddMergesIntoOneLine(t *testing.T) {
	store, _ := newTestStore(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.AddItem(candidate("1", 25, 150)))
	}

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestAddClampsToStock(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddItem(candidate("2", 45, 1)))
	require.NoError(t, store.AddItem(candidate("2", 45, 1)))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, int64(45), store.TotalPrice())
}

func TestAddRejectsZeroStock(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.AddItem(candidate("1", 10, 0))
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, store.Lines())

	err = store.AddItem(candidate("1", 10, -3))
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, store.Lines())
}

func TestAddOverwritesStockBound(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddItem(candidate("1", 10, 5)))
	store.SetQuantity("1", 5)
	require.Equal(t, 5, store.Lines()[0].Quantity)

	// The latest supplied bound wins, even when it is tighter.
	require.NoError(t, store.AddItem(candidate("1", 10, 3)))
	lines := store.Lines()
	assert.Equal(t, 3, lines[0].Stock)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestSetQuantityClampsAndRemoves(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddItem(candidate("1", 25, 150)))

	store.SetQuantity("1", 5)
	assert.Equal(t, 5, store.Lines()[0].Quantity)

	store.SetQuantity("1", 9999)
	assert.Equal(t, 150, store.Lines()[0].Quantity)

	store.SetQuantity("1", 0)
	assert.Empty(t, store.Lines())

	require.NoError(t, store.AddItem(candidate("1", 25, 150)))
	store.SetQuantity("1", -5)
	assert.Empty(t, store.Lines())
}

func TestSetQuantityUnknownProductIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddItem(candidate("1", 25, 150)))

	store.SetQuantity("ghost", 3)

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "1", lines[0].ProductID)
}

func TestRemoveAbsentProductIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.AddItem(candidate("1", 10, 5)))

	store.RemoveItem("ghost")
	assert.Len(t, store.Lines(), 1)
}

func TestTotalsScenario(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AddItem(candidate("1", 25, 150)))
	require.NoError(t, store.AddItem(candidate("1", 25, 150)))

	require.Len(t, store.Lines(), 1)
	assert.Equal(t, 2, store.Lines()[0].Quantity)
	assert.Equal(t, int64(50), store.TotalPrice())
	assert.Equal(t, 2, store.TotalItemCount())

	store.SetQuantity("1", 5)
	assert.Equal(t, int64(125), store.TotalPrice())
	// Derived values are recomputed, not cached.
	assert.Equal(t, int64(125), store.TotalPrice())

	store.RemoveItem("1")
	assert.Empty(t, store.Lines())
	assert.Equal(t, int64(0), store.TotalPrice())
	assert.Equal(t, 0, store.TotalItemCount())
}

func TestPersistenceRoundTrip(t *testing.T) {
	storage := newMemStorage()
	first, err := NewStore(storage)
	require.NoError(t, err)

	require.NoError(t, first.AddItem(candidate("b", 30, 10)))
	require.NoError(t, first.AddItem(candidate("a", 20, 10)))
	require.NoError(t, first.AddItem(candidate("b", 30, 10)))
	first.SetQuantity("a", 4)

	second, err := NewStore(storage)
	require.NoError(t, err)
	assert.Equal(t, first.Lines(), second.Lines())
	assert.Equal(t, first.TotalPrice(), second.TotalPrice())
}

func TestCorruptPayloadStartsEmpty(t *testing.T) {
	storage := newMemStorage()
	require.NoError(t, storage.Set(StorageKey, []byte("{not json")))

	store, err := NewStore(storage)
	require.NoError(t, err)
	assert.Empty(t, store.Lines())
	assert.Equal(t, int64(0), store.TotalPrice())
}

func TestEmptyCartPersistsAsArray(t *testing.T) {
	store, storage := newTestStore(t)
	require.NoError(t, store.AddItem(candidate("1", 10, 5)))
	store.Clear()

	data, err := storage.Get(StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestSubscribersNotifiedOnEveryMutation(t *testing.T) {
	store, _ := newTestStore(t)

	var calls int
	store.Subscribe(func() { calls++ })

	require.NoError(t, store.AddItem(candidate("1", 10, 5)))
	store.SetQuantity("1", 3)
	store.RemoveItem("1")
	store.Clear()

	assert.Equal(t, 4, calls)
}

func TestWatchPicksUpExternalRewrite(t *testing.T) {
	disk, err := localdisk.NewStore(t.TempDir())
	require.NoError(t, err)

	watching, err := NewStore(disk)
	require.NoError(t, err)
	writer, err := NewStore(disk)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = watching.Watch(ctx, disk.Path(StorageKey))
	}()
	// Give the watcher time to register before the rewrite happens.
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, writer.AddItem(candidate("1", 25, 150)))

	require.Eventually(t, func() bool {
		return watching.TotalItemCount() == 1
	}, 3*time.Second, 20*time.Millisecond, "watcher never reloaded the external write")
}
