// Package ingest orchestrates the client-visible upload lifecycle: mint a
// write capability, record the provisional asset, and surface out-of-band
// enrichment through a bounded re-composition schedule.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/luminahq/lumina/internal/capability"
	"github.com/luminahq/lumina/internal/database"
	"github.com/luminahq/lumina/internal/model"
	"github.com/luminahq/lumina/internal/view"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
)

// RecomposeSchedule is the bounded convergence window after a completed
// upload, relative to completion. Tagging may still be incomplete after the
// last pass; the view degrades to empty tags until the next natural refresh.
var RecomposeSchedule = []time.Duration{
	1500 * time.Millisecond,
	4 * time.Second,
	8 * time.Second,
}

// An UploadFailedError reports the store's status for a failed direct upload.
type UploadFailedError struct {
	ObjectKey string
	Status    int
}

func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("upload of %s failed with status %d", e.ObjectKey, e.Status)
}

// A Coordinator is an Inversion Of Control pattern used to init the ingest package.
type Coordinator struct {
	Logger   logger.Logger
	Database database.Client
	Issuer   *capability.Issuer
	Composer *view.Composer
	// Schedule overrides RecomposeSchedule when non-nil.
	Schedule []time.Duration
}

// RequestUpload mints a write capability and persists the provisional asset
// record (no tags, size unknown). Issuance and record-write failures are
// surfaced verbatim: the caller must not attempt the store write after one.
func (c *Coordinator) RequestUpload(ctx context.Context, fileName, contentType, ownerID string) (capability.Capability, error) {
	if ownerID == "" {
		return capability.Capability{}, errors.New("ingest: owner is required")
	}
	if fileName == "" {
		return capability.Capability{}, errors.New("ingest: file name is required")
	}

	cap, err := c.Issuer.IssueWrite(ownerID, fileName, contentType)
	if err != nil {
		return capability.Capability{}, err
	}

	asset := &model.Asset{
		OwnerID:     ownerID,
		ObjectKey:   cap.ObjectKey,
		ContentType: contentType,
	}
	if err := c.Database.Save(asset); err != nil {
		return capability.Capability{}, errors.Wrap(err, "could not record provisional asset")
	}

	c.Logger.WithPrefix("[ingest]").Infof("Write capability issued for %s", cap.ObjectKey)
	return cap, nil
}

// CompleteUpload acknowledges the client's direct store write. A non-2xx
// status is reported back with the underlying status and does not start the
// re-composition schedule. On success it returns the schedule offsets the
// caller should re-enumerate at.
func (c *Coordinator) CompleteUpload(ctx context.Context, objectKey string, status int) ([]time.Duration, error) {
	if status < 200 || status > 299 {
		return nil, errors.WithStack(&UploadFailedError{ObjectKey: objectKey, Status: status})
	}

	c.Logger.WithPrefix("[ingest]").Infof("Upload of %s completed, convergence window started", objectKey)
	return c.schedule(), nil
}

// WatchEnrichment drives the bounded schedule in-process for callers that
// want the coordinator to poll on their behalf: it recomposes the owner's
// view at each offset and delivers every pass on the returned channel. The
// channel is closed after the last pass or when ctx is done. This is a
// bounded sequence of one-shot passes, not a persistent background job.
func (c *Coordinator) WatchEnrichment(ctx context.Context, ownerID string) <-chan []view.DeliverableAsset {
	passes := make(chan []view.DeliverableAsset, len(c.schedule()))
	start := time.Now()

	go func() {
		defer close(passes)

		log := c.Logger.WithPrefix("[ingest]")
		for _, offset := range c.schedule() {
			timer := time.NewTimer(time.Until(start.Add(offset)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			assets, err := c.Composer.ComposeView(ctx, ownerID)
			if err != nil {
				log.Errorf("re-composition at +%s: %s", offset, err)
				continue
			}
			passes <- assets
		}
	}()

	return passes
}

func (c *Coordinator) schedule() []time.Duration {
	schedule := c.Schedule
	if schedule == nil {
		schedule = RecomposeSchedule
	}
	return append([]time.Duration(nil), schedule...)
}
