package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CertificatesIssued prometheus.Counter
	UnitsIssued        prometheus.Counter
	MaxCertificateID   prometheus.Gauge
	SequenceViolations prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tranchor_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		UnitsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tranchor_certificate_units_issued_total",
			Help: "Total certificate units minted across all ids",
		}),
		MaxCertificateID: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tranchor_certificate_max_id",
			Help: "Greatest certificate id issued so far",
		}),
		SequenceViolations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tranchor_certificate_sequence_violations_total",
			Help: "Issuance attempts rejected for breaking the id sequence",
		}),
	}
}

func (m *Metrics) RecordIssued(certID, amount uint64) {
	m.CertificatesIssued.Inc()
	m.UnitsIssued.Add(float64(amount))
	m.MaxCertificateID.Set(float64(certID))
}

func (m *Metrics) RecordSequenceViolation() {
	m.SequenceViolations.Inc()
}
