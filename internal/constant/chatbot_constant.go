package constant

const (
	AnonymousUserId = "anonymous"

	// Transports a chat can arrive on.
	TransportHTTP      = "http"
	TransportWebsocket = "websocket"

	// Reported by GET /health.
	LLMKeyPresent     = "present"
	LLMKeyMissing     = "missing"
	LLMKeyNotRequired = "not_required"

	// Where chat-completed events are counted from.
	EventExportLocal = "local"
	EventExportNats  = "nats"
)
