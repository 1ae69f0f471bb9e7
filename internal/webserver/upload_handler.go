package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/luminahq/lumina/internal/ingest"
	middlewarepkg "github.com/luminahq/lumina/internal/webserver/middleware"
	"github.com/luminahq/lumina/internal/webserver/weberror"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
)

type upload struct {
	logger      logger.Logger
	coordinator *ingest.Coordinator
}

// Request mints the write capability and records the provisional asset.
// Unlike the list path, failures here surface the specific reason: the user
// must be told why an upload cannot proceed.
func (h *upload) Request(c echo.Context) error {
	c.Set("handler_method", "upload.Request")

	var params struct {
		FileName    string `json:"file_name"`
		ContentType string `json:"content_type"`
	}
	if err := c.Bind(&params); err != nil {
		return weberror.New(http.StatusBadRequest, "bad request")
	}
	if params.FileName == "" {
		return weberror.New(http.StatusBadRequest, "file_name is required")
	}

	owner := c.Get(middlewarepkg.OwnerKey).(string)

	cap, err := h.coordinator.RequestUpload(c.Request().Context(), params.FileName, params.ContentType, owner)
	if err != nil {
		return issuanceError(err)
	}

	capabilitiesIssued.WithLabelValues("write").Inc()
	return c.JSON(http.StatusCreated, echo.Map{
		"url":        cap.URL,
		"object_key": cap.ObjectKey,
		"expires_at": cap.ExpiresAt,
	})
}

// Complete acknowledges the client's direct store write and hands back the
// re-composition schedule. A failed store write carries the upstream status
// and starts no schedule.
func (h *upload) Complete(c echo.Context) error {
	c.Set("handler_method", "upload.Complete")

	var params struct {
		ObjectKey string `json:"object_key"`
		Status    int    `json:"status"`
	}
	if err := c.Bind(&params); err != nil {
		return weberror.New(http.StatusBadRequest, "bad request")
	}
	if params.ObjectKey == "" {
		return weberror.New(http.StatusBadRequest, "object_key is required")
	}

	schedule, err := h.coordinator.CompleteUpload(c.Request().Context(), params.ObjectKey, params.Status)
	if err != nil {
		if failed, ok := errors.Cause(err).(*ingest.UploadFailedError); ok {
			return weberror.New(http.StatusBadGateway, failed.Error())
		}
		return weberror.New(http.StatusInternalServerError, err.Error())
	}

	offsets := make([]int64, 0, len(schedule))
	for _, offset := range schedule {
		offsets = append(offsets, offset.Milliseconds())
	}
	return c.JSON(http.StatusAccepted, echo.Map{
		"recompose_after_ms": offsets,
	})
}
