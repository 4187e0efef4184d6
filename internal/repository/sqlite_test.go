package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/catalog/internal/db"
	"github.com/atinyakov/catalog/internal/docstore"
	"github.com/atinyakov/catalog/internal/models"
	"github.com/atinyakov/catalog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *docstore.Store {
	t.Helper()
	conn, err := db.Init(docstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store, err := docstore.New(conn, docstore.DriverSQLite)
	require.NoError(t, err)
	return store
}

func coins(t *testing.T, repo *repository.CollectionRepository) *models.Collection {
	t.Helper()
	c, err := repo.CreateCollection(context.Background(), models.NewCollection{
		Name:        "Coins",
		Description: "Small change",
		Author:      "alice",
		CreatedAt:   "2024-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	return c
}

func TestScenario_CoinsPenny(t *testing.T) {
	store := newStore(t)
	collections := repository.NewCollectionRepository(store)
	items := repository.NewItemRepository(store)
	ctx := context.Background()

	c1 := coins(t, collections)
	assert.True(t, docstore.ValidID(c1.ID))

	penny, err := collections.AddItemToCollection(ctx, c1.ID, models.NewItem{
		Name:        "Penny",
		Description: "1943 steel cent",
		Tags:        "rare, steel",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"rare", "steel"}, penny.Tags)

	got, err := collections.GetCollection(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Size)
	assert.Equal(t, penny.ID, got.Items[0].ID)
	assert.Equal(t, []string{"rare", "steel"}, got.Items[0].Tags)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := items.AddComment(ctx, penny.ID, "bob", "Nice find")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	comments, err := items.ListComments(ctx, penny.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.NotEqual(t, comments[0].ID, comments[1].ID)
}

func TestDerivedSize(t *testing.T) {
	store := newStore(t)
	collections := repository.NewCollectionRepository(store)
	ctx := context.Background()

	c := coins(t, collections)
	const k = 7
	for i := 0; i < k; i++ {
		_, err := collections.AddItemToCollection(ctx, c.ID, models.NewItem{Name: fmt.Sprintf("coin %d", i), Description: "round"})
		require.NoError(t, err)
	}

	got, err := collections.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, k)
	assert.Equal(t, k, got.Size)

	// Nothing named size is ever persisted.
	raw, err := store.FindByID(ctx, repository.CollectionsPartition, c.ID)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"size"`)

	all, err := collections.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, k, all[0].Size)

	owned, err := repository.NewItemRepository(store).ListItemsByCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, owned, k)
}

func TestAddItemToCollection_UnknownCollection(t *testing.T) {
	store := newStore(t)
	collections := repository.NewCollectionRepository(store)

	_, err := collections.AddItemToCollection(context.Background(), docstore.NewID(), models.NewItem{Name: "n", Description: "d"})
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = collections.AddItemToCollection(context.Background(), "C1", models.NewItem{Name: "n", Description: "d"})
	assert.ErrorIs(t, err, docstore.ErrInvalidID)

	all, err := repository.NewItemRepository(store).ListItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNoLostUpdate_ConcurrentComments(t *testing.T) {
	store := newStore(t)
	collections := repository.NewCollectionRepository(store)
	items := repository.NewItemRepository(store)
	ctx := context.Background()

	c := coins(t, collections)
	item, err := collections.AddItemToCollection(ctx, c.ID, models.NewItem{Name: "Dime", Description: "silver"})
	require.NoError(t, err)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := items.AddComment(ctx, item.ID, fmt.Sprintf("reader%d", i), fmt.Sprintf("comment %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	comments, err := items.ListComments(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, comments, n)

	texts := make(map[string]bool, n)
	for _, c := range comments {
		texts[c.Text] = true
	}
	assert.Len(t, texts, n)

	count, err := items.CommentCount(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestAppendOrder_SerialComments(t *testing.T) {
	store := newStore(t)
	collections := repository.NewCollectionRepository(store)
	items := repository.NewItemRepository(store)
	ctx := context.Background()

	c := coins(t, collections)
	item, err := collections.AddItemToCollection(ctx, c.ID, models.NewItem{Name: "Nickel", Description: "five"})
	require.NoError(t, err)

	var returned []models.Comment
	for i := 0; i < 5; i++ {
		added, err := items.AddComment(ctx, item.ID, "bob", fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		assert.False(t, added.CreatedAt.IsZero())
		returned = append(returned, *added)
	}

	comments, err := items.ListComments(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, comments, 5)
	for i := range comments {
		assert.Equal(t, fmt.Sprintf("c%d", i), comments[i].Text)
		assert.Equal(t, returned[i].ID, comments[i].ID)
		assert.True(t, returned[i].CreatedAt.Equal(comments[i].CreatedAt), "comment %d stamp differs from the stored one", i)
		if i > 0 {
			assert.False(t, comments[i].CreatedAt.Before(comments[i-1].CreatedAt), "comment %d out of order", i)
		}
	}

	// Idempotent reads.
	again, err := items.ListComments(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, comments, again)

	full, err := items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, comments, full.Comments)
	assert.Equal(t, c.ID, full.CollectionID)
}

func TestConcurrentComments_StampsFollowAppendOrder(t *testing.T) {
	store := newStore(t)
	collections := repository.NewCollectionRepository(store)
	items := repository.NewItemRepository(store)
	ctx := context.Background()

	c := coins(t, collections)
	item, err := collections.AddItemToCollection(ctx, c.ID, models.NewItem{Name: "Quarter", Description: "silver"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := items.AddComment(ctx, item.ID, "bob", fmt.Sprintf("c%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	comments, err := items.ListComments(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, comments, 20)
	for i := 1; i < len(comments); i++ {
		assert.False(t, comments[i].CreatedAt.Before(comments[i-1].CreatedAt), "comment %d stamped before its predecessor", i)
	}
}

func TestAddItemToCollection_FailedWriteLeavesNothing(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
	}{
		{"collection append fails", `CREATE TRIGGER reject_write BEFORE UPDATE ON documents
			WHEN NEW.collection = 'collections'
			BEGIN SELECT RAISE(ABORT, 'append rejected'); END`},
		{"item insert fails", `CREATE TRIGGER reject_write BEFORE INSERT ON documents
			WHEN NEW.collection = 'items'
			BEGIN SELECT RAISE(ABORT, 'insert rejected'); END`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t)
			collections := repository.NewCollectionRepository(store)
			items := repository.NewItemRepository(store)
			ctx := context.Background()

			c := coins(t, collections)
			_, err := store.DB.ExecContext(ctx, tt.trigger)
			require.NoError(t, err)

			_, err = collections.AddItemToCollection(ctx, c.ID, models.NewItem{Name: "Penny", Description: "cent"})
			require.ErrorIs(t, err, docstore.ErrStorage)

			got, err := collections.GetCollection(ctx, c.ID)
			require.NoError(t, err)
			assert.Empty(t, got.Items)
			assert.Equal(t, 0, got.Size)

			all, err := items.ListItems(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)

			owned, err := items.ListItemsByCollection(ctx, c.ID)
			require.NoError(t, err)
			assert.Empty(t, owned)
		})
	}
}

func TestItems_CreatedAtOnBothCopies(t *testing.T) {
	store := newStore(t)
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	collections := repository.NewCollectionRepository(store).WithClock(func() time.Time { return at })
	ctx := context.Background()

	c := coins(t, collections)
	item, err := collections.AddItemToCollection(ctx, c.ID, models.NewItem{Name: "Dime", Description: "silver"})
	require.NoError(t, err)
	assert.Equal(t, at, item.CreatedAt)

	standalone, err := repository.NewItemRepository(store).GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(standalone.CreatedAt))

	got, err := collections.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, at.Equal(got.Items[0].CreatedAt))

	// The embedded copy carries no comment stream.
	raw, err := store.FindByID(ctx, repository.CollectionsPartition, c.ID)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"comments"`)
}

func TestListItemsByCollection_UnknownCollection(t *testing.T) {
	store := newStore(t)
	items := repository.NewItemRepository(store)

	_, err := items.ListItemsByCollection(context.Background(), docstore.NewID())
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = items.ListItemsByCollection(context.Background(), "C1")
	assert.ErrorIs(t, err, docstore.ErrInvalidID)

	c := coins(t, repository.NewCollectionRepository(store))
	owned, err := items.ListItemsByCollection(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestCreateCollection_DateOnly(t *testing.T) {
	store := newStore(t)
	collections := repository.NewCollectionRepository(store)

	c, err := collections.CreateCollection(context.Background(), models.NewCollection{
		Name:        "Stamps",
		Description: "Postage",
		Author:      "alice",
		CreatedAt:   "2023-11-05",
	})
	require.NoError(t, err)

	got, err := collections.GetCollection(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC).Equal(got.CreatedAt))
}

func TestListComments_ItemWithoutCommentsField(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, repository.ItemsPartition, map[string]any{"name": "legacy", "description": "seeded"})
	require.NoError(t, err)

	items := repository.NewItemRepository(store)
	comments, err := items.ListComments(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []models.Comment{}, comments)

	item, err := items.GetItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []models.Comment{}, item.Comments)
	assert.Equal(t, []string{}, item.Tags)

	_, err = items.ListComments(ctx, docstore.NewID())
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestUsers_UniqueEmail(t *testing.T) {
	store := newStore(t)
	users := repository.NewUserRepository(store)
	ctx := context.Background()

	alice, err := users.CreateUser(ctx, models.NewUser{Username: "alice", Email: "alice@example.com", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, models.NewUser{Username: "alice2", Email: "ALICE@example.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, docstore.ErrDuplicateKey)

	found, err := users.FindUserByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
	assert.Equal(t, "h1", found.PasswordHash)

	got, err := users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	all, err := users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
