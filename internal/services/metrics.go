package services

import "github.com/prometheus/client_golang/prometheus"

// Mutation outcomes recorded on cafe_mutations_total.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultConflict = "conflict"
	resultInvalid  = "invalid"
	resultError    = "error"
)

// mutations counts add/update_price/delete attempts by outcome.
var mutations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cafe_mutations_total",
		Help: "Total number of cafe catalog mutations by operation and result.",
	},
	[]string{"op", "result"},
)

func init() {
	prometheus.MustRegister(mutations)
}

func record(op, result string) {
	mutations.WithLabelValues(op, result).Inc()
}
