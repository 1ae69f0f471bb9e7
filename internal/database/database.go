package database

import (
	"github.com/luminahq/lumina/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsUnavailable returns true if err reports a backend failure rather
		// than a missing record. Read paths absorb such errors and degrade to
		// an empty result.
		IsUnavailable(err error) bool

		AssetInteraction
	}

	// An AssetInteraction defines all the methods used to interact with an asset record.
	AssetInteraction interface {
		// AllAssets enumerates the whole table. Owner filtering happens in the
		// caller; no owner-side index is assumed available.
		AllAssets() ([]*model.Asset, error)
		FindAsset(id string) (*model.Asset, error)
		FindAssetByKey(objectKey string) (*model.Asset, error)
		// FindAssetsByOwner is the indexed alternative to scan-then-filter,
		// kept for deployments whose table grows beyond a scan's reach.
		FindAssetsByOwner(ownerID string) ([]*model.Asset, error)
	}
)
