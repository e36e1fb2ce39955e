package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accounts_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_login_attempts_total",
			Help: "Total number of login attempts by result.",
		},
		[]string{"result"},
	)

	logoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accounts_logouts_total",
		Help: "Total number of refresh tokens revoked via logout.",
	})

	refreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accounts_token_refreshes_total",
		Help: "Total number of access tokens minted from refresh tokens.",
	})

	adminReassignmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accounts_group_admin_reassignments_total",
		Help: "Total number of group-admin reassignment requests sent.",
	})
)
