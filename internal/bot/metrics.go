package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instasaver_downloads_total",
		Help: "Media files successfully relayed, by kind.",
	}, []string{"kind"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instasaver_failures_total",
		Help: "Failed download requests, by stage.",
	}, []string{"stage"})

	usersSeenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "instasaver_users_seen_total",
		Help: "Messages that produced a user activity record.",
	})
)
