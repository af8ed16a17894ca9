package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(NotificationsTotal.WithLabelValues("completed"))
	IncNotification("completed")
	IncNotification("completed")
	assert.Equal(t, before+2, testutil.ToFloat64(NotificationsTotal.WithLabelValues("completed")))

	IncAudit("PaymentCompleted", "recorded")
	assert.Equal(t, 1.0, testutil.ToFloat64(AuditEventsTotal.WithLabelValues("PaymentCompleted", "recorded")))
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("/api/payments/notify", "POST", "200", 0.01)
	assert.Equal(t, 1.0, testutil.ToFloat64(RequestsTotal.WithLabelValues("/api/payments/notify", "POST", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(RequestDuration))
}
