package telegram

// Bot abstracts the message-sending side of a telegram bot so command
// handlers and middleware stay decoupled from the underlying client.
type Bot interface {
	// SendMessage sends a text message (blocking)
	SendMessage(chatID int64, text string) error
}

// ValidationError represents validation failure
type ValidationError struct {
	Field   string
	Message string
}

// Error implements error interface
func (v ValidationError) Error() string {
	return v.Message
}
