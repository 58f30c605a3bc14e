// Package metrics defines and registers the custom Prometheus metrics of the
// ticketing API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init (promauto), so importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ticketing"

// Deletion outcomes used as the result label of UserDeletionsTotal.
const (
	DeletionDeleted  = "deleted"
	DeletionRejected = "rejected"
	DeletionNotFound = "not_found"
	DeletionError    = "error"
)

// ── User lifecycle ────────────────────────────────────────────────────────────

// UsersCreatedTotal counts users persisted by CreateUser.
// Label:
//   - role: "Admin", "Manager", "Employee" or "Other"
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created, by role.",
	},
	[]string{"role"},
)

// UsersUpdatedTotal counts successful updates.
var UsersUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_updated_total",
		Help:      "Total number of users updated.",
	},
)

// UserDeletionsTotal counts delete attempts by outcome.
// Label:
//   - result: "deleted", "rejected", "not_found" or "error"
var UserDeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_deletions_total",
		Help:      "Total number of user delete attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// ── Identity directory ────────────────────────────────────────────────────────

// IdentityMirrorFailuresTotal counts users persisted locally whose Identity
// Directory account could not be created.
var IdentityMirrorFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_mirror_failures_total",
		Help:      "Total number of failed Identity Directory account creations.",
	},
)

// IdentityRequestDuration measures calls to the Identity Directory.
// Labels:
//   - op: "create" or "remove"
//   - outcome: "ok" or "error"
var IdentityRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "identity_request_duration_seconds",
		Help:      "Duration of Identity Directory admin API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op", "outcome"},
)
