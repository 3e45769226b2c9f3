package utils

// ResponseData is the JSON envelope for API responses. Status mirrors the
// HTTP status code but is not serialized.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}
