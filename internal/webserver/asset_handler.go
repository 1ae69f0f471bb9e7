package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/luminahq/lumina/internal/capability"
	"github.com/luminahq/lumina/internal/view"
	middlewarepkg "github.com/luminahq/lumina/internal/webserver/middleware"
	"github.com/luminahq/lumina/internal/webserver/weberror"
	"github.com/mdouchement/logger"
)

type asset struct {
	logger   logger.Logger
	composer *view.Composer
	issuer   *capability.Issuer
}

// List returns the owner-scoped delivery-ready assets. Backend failures on
// this path degrade to an empty list: the UI shows "no assets", never an
// error banner.
func (h *asset) List(c echo.Context) error {
	c.Set("handler_method", "asset.List")

	owner := c.Get(middlewarepkg.OwnerKey).(string)

	assets, err := h.composer.ComposeView(c.Request().Context(), owner)
	if err != nil {
		return weberror.New(http.StatusInternalServerError, err.Error())
	}

	compositionsTotal.Inc()
	composedAssets.Add(float64(len(assets)))
	capabilitiesIssued.WithLabelValues("read_standard").Add(float64(len(assets)))
	return c.JSON(http.StatusOK, assets)
}

// Share mints the 24-hour extended read capability for an explicit share
// request.
func (h *asset) Share(c echo.Context) error {
	c.Set("handler_method", "asset.Share")

	var params struct {
		ObjectKey string `json:"object_key"`
	}
	if err := c.Bind(&params); err != nil {
		return weberror.New(http.StatusBadRequest, "bad request")
	}
	if params.ObjectKey == "" {
		return weberror.New(http.StatusBadRequest, "object_key is required")
	}

	cap, err := h.issuer.IssueRead(params.ObjectKey, capability.ReadExtended)
	if err != nil {
		return issuanceError(err)
	}

	capabilitiesIssued.WithLabelValues("read_extended").Inc()
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"url":        cap.URL,
		"expires_at": cap.ExpiresAt,
	})
}

// issuanceError maps capability issuance failures to distinct user-visible
// reasons so operators can tell "not set up" from "misconfigured
// credentials" from "store down".
func issuanceError(err error) error {
	switch {
	case capability.IsConfiguration(err):
		return weberror.New(http.StatusServiceUnavailable, "object store is not configured")
	case capability.IsCredential(err):
		return weberror.New(http.StatusBadGateway, "object store rejected the credentials")
	default:
		return weberror.New(http.StatusInternalServerError, err.Error())
	}
}
