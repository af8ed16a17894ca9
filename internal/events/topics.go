package events

const (
	TopicPaymentInitialized = "payment.initialized"
	TopicPaymentCompleted   = "payment.completed"
	TopicPaymentFailed      = "payment.failed"
	TopicPaymentCancelled   = "payment.cancelled"
	TopicSeatsCommitted     = "seats.committed"
	TopicSeatConflict       = "seats.conflict"
)

var topicByEvent = map[string]string{
	EventPaymentInitialized: TopicPaymentInitialized,
	EventPaymentCompleted:   TopicPaymentCompleted,
	EventPaymentFailed:      TopicPaymentFailed,
	EventPaymentCancelled:   TopicPaymentCancelled,
	EventSeatsCommitted:     TopicSeatsCommitted,
	EventSeatConflict:       TopicSeatConflict,
}

func TopicFor(eventType string) (string, bool) {
	t, ok := topicByEvent[eventType]
	return t, ok
}

// AllTopics is what the audit consumer subscribes to.
func AllTopics() []string {
	return []string{
		TopicPaymentInitialized, TopicPaymentCompleted, TopicPaymentFailed,
		TopicPaymentCancelled, TopicSeatsCommitted, TopicSeatConflict,
	}
}

// Partition key = order id, so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
