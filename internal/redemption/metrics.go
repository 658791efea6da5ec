package redemption

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	redemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tranchor_redemptions_total",
		Help: "Redemption requests by outcome.",
	}, []string{"outcome"})

	unitsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tranchor_redeemed_units_total",
		Help: "Total units settled through redemption.",
	})

	certificatesRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tranchor_redeemed_certificates_total",
		Help: "Total certificate lines settled through redemption.",
	})
)
