package kafka

// Topic definitions for Kafka event streaming
const (
	// Strategy evaluation lifecycle
	TopicEvaluationRequested = "strategies.evaluation_requested"

	// Agent events
	TopicAgentDecision = "agents.decisions"

	// Signal events
	TopicSignalGenerated = "signals.generated"

	// Notification fan-out
	TopicNotificationDispatch = "notifications.dispatch"
)
