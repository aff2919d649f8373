package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustregistry_messages_received_total",
		Help: "Inbound messages by type",
	}, []string{"type"})

	messagesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustregistry_messages_failed_total",
		Help: "Messages whose handler returned an error, by type",
	}, []string{"type"})

	messagesUnroutable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trustregistry_messages_unroutable_total",
		Help: "Messages dropped because no handler supports their type",
	})

	problemReportsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustregistry_problem_reports_sent_total",
		Help: "Problem reports sent, by code",
	}, []string{"code"})

	adminOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trustregistry_admin_operations_total",
		Help: "Admin operations by operation and outcome",
	}, []string{"operation", "status"})
)
