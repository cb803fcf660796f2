package handlers

// ErrorDetail is the body of an error response.
type ErrorDetail struct {
	Code    string `json:"code" example:"INVALID_INPUT"`
	Message string `json:"message" example:"Invalid input provided"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message" example:"Obligation deleted successfully"`
}
