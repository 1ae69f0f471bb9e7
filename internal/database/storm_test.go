package database

import (
	"path/filepath"
	"testing"

	"github.com/luminahq/lumina/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) Client {
	t.Helper()

	db, err := StormOpen(filepath.Join(t.TempDir(), "lumina.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestStormSave(t *testing.T) {
	db := open(t)

	asset := &model.Asset{
		OwnerID:   "user-42",
		ObjectKey: "uploads/user-42/1-cat.jpg",
	}
	require.NoError(t, db.Save(asset))

	assert.NotEmpty(t, asset.ID)
	assert.False(t, asset.CreatedAt.IsZero())

	found, err := db.FindAsset(asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/user-42/1-cat.jpg", found.ObjectKey)
}

func TestStormAllAssets(t *testing.T) {
	db := open(t)

	require.NoError(t, db.Save(&model.Asset{OwnerID: "user-42", ObjectKey: "uploads/user-42/1-cat.jpg"}))
	require.NoError(t, db.Save(&model.Asset{OwnerID: "user-7", ObjectKey: "uploads/user-7/2-dog.jpg"}))

	assets, err := db.AllAssets()
	require.NoError(t, err)
	assert.Len(t, assets, 2)
}

func TestStormFindAssetByKey(t *testing.T) {
	db := open(t)

	require.NoError(t, db.Save(&model.Asset{OwnerID: "user-42", ObjectKey: "uploads/user-42/1-cat.jpg"}))

	asset, err := db.FindAssetByKey("uploads/user-42/1-cat.jpg")
	require.NoError(t, err)
	assert.Equal(t, "user-42", asset.OwnerID)

	_, err = db.FindAssetByKey("uploads/user-42/0-nope.jpg")
	assert.True(t, db.IsNotFound(err))
	assert.False(t, db.IsUnavailable(err))
}

func TestStormFindAssetsByOwner(t *testing.T) {
	db := open(t)

	require.NoError(t, db.Save(&model.Asset{OwnerID: "user-42", ObjectKey: "uploads/user-42/1-cat.jpg"}))
	require.NoError(t, db.Save(&model.Asset{OwnerID: "user-42", ObjectKey: "uploads/user-42/2-dog.jpg"}))
	require.NoError(t, db.Save(&model.Asset{OwnerID: "user-7", ObjectKey: "uploads/user-7/3-owl.jpg"}))

	assets, err := db.FindAssetsByOwner("user-42")
	require.NoError(t, err)
	assert.Len(t, assets, 2)

	assets, err = db.FindAssetsByOwner("user-0")
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestStormEnrichmentWrite(t *testing.T) {
	db := open(t)

	asset := &model.Asset{OwnerID: "user-42", ObjectKey: "uploads/user-42/1-cat.jpg"}
	require.NoError(t, db.Save(asset))

	// The tagging worker appends labels to an existing record.
	asset.Tags = []model.Tag{{Value: "cat"}, {Value: "outdoor"}}
	asset.FileSize = 2048
	require.NoError(t, db.Save(asset))

	found, err := db.FindAssetByKey(asset.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "outdoor"}, model.TagStrings(found.Tags))
	assert.Equal(t, int64(2048), found.FileSize)
}
