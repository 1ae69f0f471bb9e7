// Package view joins enumerated metadata records with freshly minted read
// capabilities to produce an owner-scoped, delivery-ready asset list.
package view

import (
	"context"
	"path"
	"time"

	"github.com/luminahq/lumina/internal/capability"
	"github.com/luminahq/lumina/internal/database"
	"github.com/luminahq/lumina/internal/model"
	"github.com/luminahq/lumina/internal/storage"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultResolveLimit caps the number of in-flight per-asset resolutions.
const DefaultResolveLimit = 8

// A DeliverableAsset is an asset record annotated with a resolved read URL.
type DeliverableAsset struct {
	AssetID     string    `json:"asset_id"`
	OwnerID     string    `json:"owner_id"`
	ObjectKey   string    `json:"object_key"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
	Tags        []string  `json:"tags"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// A Composer is an Inversion Of Control pattern used to init the view package.
type Composer struct {
	Logger   logger.Logger
	Database database.Client
	Storage  storage.Backend
	Issuer   *capability.Issuer
	// Limit caps concurrent resolutions. DefaultResolveLimit when zero.
	Limit int
}

// ComposeView returns the delivery-ready assets of the given owner.
//
// Store enumeration failures are absorbed and yield an empty list: list
// views favor availability over error visibility. Per-asset resolution
// failures (dead record, store error) drop only that asset.
func (c *Composer) ComposeView(ctx context.Context, ownerID string) ([]DeliverableAsset, error) {
	if ownerID == "" {
		return nil, errors.New("view: owner is required")
	}

	assets, err := c.Database.AllAssets()
	if err != nil && c.Database.IsUnavailable(err) {
		c.Logger.WithPrefix("[composer]").Warnf("metadata store unavailable: %s", err)
		return []DeliverableAsset{}, nil
	}

	owned := assets[:0]
	for _, asset := range assets {
		if asset.OwnerID == ownerID {
			owned = append(owned, asset)
		}
	}

	return c.resolve(ctx, owned), nil
}

// ComposeAll returns every owner's assets. Operator tooling only; the
// service API never exposes an unscoped view.
func (c *Composer) ComposeAll(ctx context.Context) ([]DeliverableAsset, error) {
	assets, err := c.Database.AllAssets()
	if err != nil && c.Database.IsUnavailable(err) {
		c.Logger.WithPrefix("[composer]").Warnf("metadata store unavailable: %s", err)
		return []DeliverableAsset{}, nil
	}

	return c.resolve(ctx, assets), nil
}

// resolve concurrently confirms each record's backing object and mints a
// standard read capability for it. Every resolution is independent: a
// failure removes that asset from the result and nothing else.
func (c *Composer) resolve(ctx context.Context, assets []*model.Asset) []DeliverableAsset {
	log := c.Logger.WithPrefix("[composer]")

	limit := c.Limit
	if limit <= 0 {
		limit = DefaultResolveLimit
	}

	results := make([]*DeliverableAsset, len(assets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, asset := range assets {
		i, asset := i, asset

		g.Go(func() error {
			if err := c.Storage.Stat(ctx, asset.ObjectKey); err != nil {
				log.Debugf("dropping %s: %s", asset.ObjectKey, err)
				return nil
			}

			cap, err := c.Issuer.IssueRead(asset.ObjectKey, capability.ReadStandard)
			if err != nil {
				log.Debugf("dropping %s: %s", asset.ObjectKey, err)
				return nil
			}

			results[i] = &DeliverableAsset{
				AssetID:     asset.ID,
				OwnerID:     asset.OwnerID,
				ObjectKey:   asset.ObjectKey,
				FileName:    path.Base(asset.ObjectKey),
				FileSize:    asset.FileSize,
				ContentType: asset.ContentType,
				Tags:        model.TagStrings(asset.Tags),
				URL:         cap.URL,
				ExpiresAt:   cap.ExpiresAt,
				CreatedAt:   asset.CreatedAt,
			}
			return nil
		})
	}
	g.Wait() // workers never return an error

	composed := make([]DeliverableAsset, 0, len(assets))
	for _, result := range results {
		if result != nil {
			composed = append(composed, *result)
		}
	}
	return composed
}
