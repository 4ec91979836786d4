package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the registration workflow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registrations       *prometheus.CounterVec
	UploadFailures      *prometheus.CounterVec
	ConfirmationEmails  *prometheus.CounterVec
	OptionFetchFailures *prometheus.CounterVec
	SubmissionDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bjj_registrations_total",
			Help: "Registration submissions by registrant type and outcome",
		}, []string{"type", "outcome"}),
		UploadFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bjj_uploads_failed_total",
			Help: "Document uploads that failed, by registrant type and purpose",
		}, []string{"type", "purpose"}),
		ConfirmationEmails: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bjj_confirmation_emails_total",
			Help: "Confirmation email dispatches by registrant type and outcome",
		}, []string{"type", "outcome"}),
		OptionFetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bjj_option_fetch_failures_total",
			Help: "Option list fetches that failed, by category",
		}, []string{"category"}),
		SubmissionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bjj_submission_duration_seconds",
			Help:    "Wall time of a registration submission",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
	}
}

func (m *Metrics) RegistrationOutcome(kind, outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) UploadFailed(kind, purpose string) {
	if m == nil {
		return
	}
	m.UploadFailures.WithLabelValues(kind, purpose).Inc()
}

func (m *Metrics) ConfirmationEmail(kind, outcome string) {
	if m == nil {
		return
	}
	m.ConfirmationEmails.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) OptionFetchFailed(category string) {
	if m == nil {
		return
	}
	m.OptionFetchFailures.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveSubmission(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SubmissionDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
