package webserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	capabilitiesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lumina",
		Name:      "capabilities_issued_total",
		Help:      "Number of capabilities issued, by class.",
	}, []string{"class"})

	compositionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lumina",
		Name:      "compositions_total",
		Help:      "Number of owner-scoped view compositions served.",
	})

	composedAssets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lumina",
		Name:      "composed_assets_total",
		Help:      "Number of assets delivered across all compositions.",
	})
)
