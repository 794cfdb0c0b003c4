package metrics

import "time"

// Status labels shared by the recorders below.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

func status(ok bool) string {
	if ok {
		return StatusOK
	}
	return StatusError
}

// Message records an inbound channel message.
func Message(msgType string, ok bool) {
	if !enabled {
		return
	}
	messagesTotal.WithLabelValues(msgType, status(ok)).Inc()
}

// Command records a finished command and its latency.
func Command(msgType string, ok bool, elapsed time.Duration) {
	if !enabled {
		return
	}
	commandsTotal.WithLabelValues(msgType, status(ok)).Inc()
	commandTime.WithLabelValues(msgType).Observe(elapsed.Seconds())
}

// ChannelsActive sets the number of attached channels.
func ChannelsActive(n int) {
	if !enabled {
		return
	}
	channelsActive.Set(float64(n))
}

// Broadcast records a broadcast of the given message type.
func Broadcast(msgType string) {
	if !enabled {
		return
	}
	broadcastsTotal.WithLabelValues(msgType).Inc()
}

// ForwardQueued records a forward held until its target attaches.
func ForwardQueued(target string) {
	if !enabled {
		return
	}
	forwardsQueued.WithLabelValues(target).Inc()
}

// RateLimited records a message dropped by the inbound limiter.
func RateLimited(channel string) {
	if !enabled {
		return
	}
	rateLimitedTotal.WithLabelValues(channel).Inc()
}

// Reload records a repository reload triggered by the file watcher.
func Reload(collection string, ok bool) {
	if !enabled {
		return
	}
	reloadsTotal.WithLabelValues(collection, status(ok)).Inc()
}
