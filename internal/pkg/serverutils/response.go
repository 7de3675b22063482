package serverutils

// Envelope is the standard JSON response wrapper.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Envelope {
	return Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message string) Envelope {
	return Envelope{
		Success: false,
		Message: message,
	}
}
