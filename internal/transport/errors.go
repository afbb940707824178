package transport

import "fmt"

// TimeoutError reports a request that exceeded its deadline.
type TimeoutError struct {
	Host string
	URL  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out: %s", e.Host, e.URL)
}

// NetworkError reports a network-level failure (DNS, connection reset).
type NetworkError struct {
	Host    string
	Message string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for %s: %s", e.Host, e.Message)
}

// HTTPError reports a non-2xx response that was not recovered by the
// throttling retry.
type HTTPError struct {
	Status int
	Host   string
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.Status, e.Host, e.URL)
}
