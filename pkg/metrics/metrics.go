package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "authgate", Name: "logins_total", Help: "OAuth login attempts by result."},
		[]string{"result"},
	)
	AuthRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "authgate", Name: "auth_rejections_total", Help: "Requests rejected by the authentication gate, by reason."},
		[]string{"reason"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(Logins)
	reg.MustRegister(AuthRejections)
}
