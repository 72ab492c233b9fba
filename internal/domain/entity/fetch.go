package entity

// FetchRequest describes a single outbound HTTP call.
type FetchRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// FetchResponse holds the status and the body of a successful call.
type FetchResponse struct {
	StatusCode int
	Body       []byte
}
