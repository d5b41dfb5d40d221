package observability

import (
	"math"
	"math/big"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/akintewe/Neko-Oracle-RWA/core/events"
	"github.com/akintewe/Neko-Oracle-RWA/core/types"
)

// lendingMetrics tracks pool activity from the engine's event stream. It
// implements events.Emitter so it can be fanned in next to the audit journal.
type lendingMetrics struct {
	eventsTotal *prometheus.CounterVec
	accruals    *prometheus.CounterVec
	volume      *prometheus.CounterVec
	backstop    prometheus.Gauge
	poolState   prometheus.Gauge
}

var (
	lendingMetricsOnce sync.Once
	lendingRegistry    *lendingMetrics
)

// Lending returns the process-wide metrics recorder for the lending engine.
func Lending() *lendingMetrics {
	lendingMetricsOnce.Do(func() {
		lendingRegistry = &lendingMetrics{
			eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neko",
				Subsystem: "lending",
				Name:      "events_total",
				Help:      "Count of engine events segmented by event type.",
			}, []string{"type"}),
			accruals: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neko",
				Subsystem: "lending",
				Name:      "interest_accruals_total",
				Help:      "Count of interest accrual passes segmented by asset.",
			}, []string{"asset"}),
			volume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "neko",
				Subsystem: "lending",
				Name:      "volume_total",
				Help:      "Cumulative underlying moved per event type and asset.",
			}, []string{"type", "asset"}),
			backstop: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "neko",
				Subsystem: "lending",
				Name:      "backstop_total",
				Help:      "Total tokens staked in the backstop pool.",
			}),
			poolState: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "neko",
				Subsystem: "lending",
				Name:      "pool_state",
				Help:      "Pool lifecycle state: 0 active, 1 on-ice, 2 frozen.",
			}),
		}
		prometheus.MustRegister(
			lendingRegistry.eventsTotal,
			lendingRegistry.accruals,
			lendingRegistry.volume,
			lendingRegistry.backstop,
			lendingRegistry.poolState,
		)
	})
	return lendingRegistry
}

// Emit records one engine event. It never blocks or fails.
func (m *lendingMetrics) Emit(evt events.Event) {
	if m == nil || evt == nil {
		return
	}
	eventType := evt.EventType()
	if eventType == "" {
		return
	}
	m.eventsTotal.WithLabelValues(eventType).Inc()

	typed, ok := evt.(*types.Event)
	if !ok || typed == nil {
		return
	}
	if asset := typed.Get("asset"); asset != "" {
		if amount := typed.Get("amount"); amount != "" {
			m.volume.WithLabelValues(eventType, asset).Add(attrFloat(amount))
		}
		if eventType == "lending.interest.accrued" {
			m.accruals.WithLabelValues(asset).Inc()
		}
	}
	if total := typed.Get("total"); total != "" {
		m.backstop.Set(attrFloat(total))
	}
	if state := typed.Get("pool_state"); state != "" {
		m.poolState.Set(poolStateOrdinal(state))
	}
	if eventType == "lending.pool.state_changed" {
		m.poolState.Set(poolStateOrdinal(typed.Get("state")))
	}
}

func poolStateOrdinal(state string) float64 {
	switch state {
	case "active":
		return 0
	case "on_ice":
		return 1
	case "frozen":
		return 2
	}
	return math.NaN()
}

func attrFloat(raw string) float64 {
	if v, ok := new(big.Int).SetString(raw, 10); ok {
		f, _ := new(big.Float).SetInt(v).Float64()
		if !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
		return 0
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return 0
}
