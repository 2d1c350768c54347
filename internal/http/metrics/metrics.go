package metrics

import (
	"sync/atomic"
)

type Collector struct {
	requests         uint64
	errors           uint64
	webhooksAccepted uint64
	webhooksRejected uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests() {
	atomic.AddUint64(&c.requests, 1)
}

func (c *Collector) IncErrors() {
	atomic.AddUint64(&c.errors, 1)
}

func (c *Collector) IncWebhooksAccepted() {
	atomic.AddUint64(&c.webhooksAccepted, 1)
}

func (c *Collector) IncWebhooksRejected() {
	atomic.AddUint64(&c.webhooksRejected, 1)
}

type Snapshot struct {
	Requests         uint64
	Errors           uint64
	WebhooksAccepted uint64
	WebhooksRejected uint64
}

func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Requests:         atomic.LoadUint64(&c.requests),
		Errors:           atomic.LoadUint64(&c.errors),
		WebhooksAccepted: atomic.LoadUint64(&c.webhooksAccepted),
		WebhooksRejected: atomic.LoadUint64(&c.webhooksRejected),
	}
}
