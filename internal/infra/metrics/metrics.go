package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovementsTotal — зарегистрированные операции журнала по типам.
	MovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockbook_movements_total",
		Help: "Registered ledger movements by type.",
	}, []string{"type"})

	MovementsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockbook_movements_rejected_total",
		Help: "Business events rejected by validation.",
	})

	BackupExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockbook_backup_exports_total",
		Help: "Completed backup exports.",
	})

	BackupImportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockbook_backup_imports_total",
		Help: "Completed backup imports.",
	})

	ReportExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockbook_report_exports_total",
		Help: "Generated xlsx ledger reports.",
	})
)
