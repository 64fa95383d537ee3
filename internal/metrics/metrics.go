package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransfersTotal counts transfer outcomes: committed plus each
	// denial kind.
	TransfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transfers_total",
			Help: "Transfer attempts by outcome",
		},
		[]string{"outcome"},
	)

	AccountsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_accounts_opened_total",
			Help: "Accounts created",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Pending async jobs (audit writes)",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(TransfersTotal)
	prometheus.MustRegister(AccountsOpened)
	prometheus.MustRegister(WorkerQueueDepth)
}
