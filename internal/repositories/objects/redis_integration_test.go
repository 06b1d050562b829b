//go:build integration

package objects_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/repositories/objects"
	"github.com/KirkDiggler/aionia-sheet/internal/testutils"
)

func TestRedisRepository_Integration(t *testing.T) {
	client := testutils.CreateTestRedisClient(t, nil)
	repo := objects.NewRedis(client)
	ctx := context.Background()

	t.Run("put get list delete", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, &objects.Object{Key: "u1/a.json", ContentType: "application/json", Data: []byte(`{"x":1}`)}))
		require.NoError(t, repo.Put(ctx, &objects.Object{Key: "u1/images/1-a.png", ContentType: "image/png", Data: []byte("png")}))
		require.NoError(t, repo.Put(ctx, &objects.Object{Key: "u2/a.json", Data: []byte(`{}`)}))

		got, err := repo.Get(ctx, "u1/a.json")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"x":1}`), got.Data)

		list, err := repo.List(ctx, "u1/")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "u1/a.json", list[0].Key)
		assert.Equal(t, "u1/images/1-a.png", list[1].Key)

		require.NoError(t, repo.Delete(ctx, "u1/a.json"))
		assert.True(t, sheeterr.IsNotFound(repo.Delete(ctx, "u1/a.json")))

		list, err = repo.List(ctx, "u1/")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("overwrite keeps one index entry", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, &objects.Object{Key: "u3/a.json", Data: []byte("1")}))
		require.NoError(t, repo.Put(ctx, &objects.Object{Key: "u3/a.json", Data: []byte("22")}))

		list, err := repo.List(ctx, "u3/")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(2), list[0].Size)
	})
}
