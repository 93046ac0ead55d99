package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ListEnvelope is the shape shared by offset-paginated list endpoints.
type ListEnvelope[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
