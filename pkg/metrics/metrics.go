package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "groupchat", Name: "auth_decisions_total", Help: "Auth gate outcomes by decision (admitted, no_token, blacklisted, invalid_token, forbidden)."},
		[]string{"decision"},
	)
	HubBroadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "groupchat", Name: "hub_broadcasts_total", Help: "Messages fanned out by the room hub, by room."},
		[]string{"room"},
	)
	HubConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "groupchat", Name: "hub_connections", Help: "Currently connected WebSocket clients."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "groupchat", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "groupchat", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthDecisions)
	reg.MustRegister(HubBroadcasts)
	reg.MustRegister(HubConnections)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
