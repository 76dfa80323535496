package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawresort",
			Name:      "http_requests_total",
			Help:      "Count of API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawresort",
			Name:      "availability_checks_total",
			Help:      "Count of availability checks by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	batchDegraded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pawresort",
			Name:      "availability_batch_degraded_total",
			Help:      "Count of batch checks that returned a degraded result.",
		},
	)

	assignmentValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawresort",
			Name:      "assignment_validations_total",
			Help:      "Count of multi-pet assignment validations by verdict.",
		},
		[]string{"verdict"},
	)

	writeConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pawresort",
			Name:      "reservation_write_conflicts_total",
			Help:      "Count of reservation writes rejected by the transactional overlap re-check.",
		},
	)

	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pawresort",
			Name:      "checkin_reminders_total",
			Help:      "Count of check-in reminders by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers all metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, availabilityChecks, batchDegraded,
			assignmentValidations, writeConflicts, remindersSent,
		)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncAvailabilityCheck(mode, outcome string) {
	availabilityChecks.WithLabelValues(mode, outcome).Inc()
}

func IncBatchDegraded() {
	batchDegraded.Inc()
}

func IncAssignmentValidation(verdict string) {
	assignmentValidations.WithLabelValues(verdict).Inc()
}

func IncWriteConflict() {
	writeConflicts.Inc()
}

func IncReminder(outcome string) {
	remindersSent.WithLabelValues(outcome).Inc()
}
