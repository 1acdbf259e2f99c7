package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dicearena"

// Invite outcomes
const (
	InviteSent      = "sent"
	InviteCooldown  = "cooldown"
	InviteBusy      = "busy"
	InviteAccepted  = "accepted"
	InviteDeclined  = "declined"
	InviteTimeout   = "timeout"
	InviteCancelled = "cancelled"
)

// Match end reasons
const (
	MatchKnockout = "knockout"
	MatchForfeit  = "forfeit"
)

// Metrics holds the arena's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	connectedClients prometheus.Gauge
	droppedFrames    prometheus.Counter
	logins           prometheus.Counter
	invites          *prometheus.CounterVec
	matchesStarted   prometheus.Counter
	matchesFinished  *prometheus.CounterVec
	activeMatches    prometheus.Gauge
	roundsResolved   prometheus.Counter
}

// New registers the arena collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		connectedClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of open WebSocket connections.",
		}),
		droppedFrames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Inbound frames dropped by the per-connection rate limit.",
		}),
		logins: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login events processed.",
		}),
		invites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invites_total",
			Help:      "Invite handshake outcomes.",
		}, []string{"outcome"}),
		matchesStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_started_total",
			Help:      "Match sessions created.",
		}),
		matchesFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finished_total",
			Help:      "Match sessions settled.",
		}, []string{"reason"}),
		activeMatches: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_matches",
			Help:      "Match sessions currently in progress.",
		}),
		roundsResolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_resolved_total",
			Help:      "Dice rounds resolved.",
		}),
	}
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.connectedClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.connectedClients.Dec()
}

func (m *Metrics) FrameDropped() {
	if m == nil {
		return
	}
	m.droppedFrames.Inc()
}

func (m *Metrics) Login() {
	if m == nil {
		return
	}
	m.logins.Inc()
}

func (m *Metrics) Invite(outcome string) {
	if m == nil {
		return
	}
	m.invites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) MatchStarted() {
	if m == nil {
		return
	}
	m.matchesStarted.Inc()
	m.activeMatches.Inc()
}

func (m *Metrics) MatchFinished(reason string) {
	if m == nil {
		return
	}
	m.matchesFinished.WithLabelValues(reason).Inc()
	m.activeMatches.Dec()
}

func (m *Metrics) RoundResolved() {
	if m == nil {
		return
	}
	m.roundsResolved.Inc()
}
