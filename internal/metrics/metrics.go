// Package metrics содержит метрики Prometheus сервиса аутентификации.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения метки result.
const (
	ResultSuccess            = "success"
	ResultInvalid            = "invalid"
	ResultDuplicate          = "duplicate"
	ResultInvalidCredentials = "invalid_credentials"
	ResultError              = "error"
)

// Metrics собирает счётчики операций аутентификации и длительность хеширования.
// Методы безопасно вызывать на nil.
type Metrics struct {
	authOperations   *prometheus.CounterVec
	hashDuration     *prometheus.HistogramVec
	identityResolved prometheus.Counter
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mycrm",
			Subsystem: "auth",
			Name:      "operations_total",
			Help:      "Количество операций аутентификации по типу и результату.",
		}, []string{"operation", "result"}),
		hashDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mycrm",
			Subsystem: "auth",
			Name:      "password_hash_seconds",
			Help:      "Длительность хеширования и проверки паролей.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"kind"}),
		identityResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mycrm",
			Subsystem: "auth",
			Name:      "identity_resolved_total",
			Help:      "Количество запросов, разрешённых в учётную запись по сессии.",
		}),
	}
	reg.MustRegister(m.authOperations, m.hashDuration, m.identityResolved)
	return m
}

// AuthOperation учитывает результат операции register, login или logout.
func (m *Metrics) AuthOperation(operation, result string) {
	if m == nil {
		return
	}
	m.authOperations.WithLabelValues(operation, result).Inc()
}

// ObserveHash учитывает длительность bcrypt-операции kind (hash или verify).
func (m *Metrics) ObserveHash(kind string, started time.Time) {
	if m == nil {
		return
	}
	m.hashDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// IdentityResolved учитывает успешное разрешение сессии в учётную запись.
func (m *Metrics) IdentityResolved() {
	if m == nil {
		return
	}
	m.identityResolved.Inc()
}
