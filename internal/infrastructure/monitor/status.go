package monitor

import "time"

// Status is the result of one health check.
type Status struct {
	API           bool      `json:"api"`
	APIError      string    `json:"api_error,omitempty"`
	Storage       bool      `json:"storage"`
	StorageDriver string    `json:"storage_driver"`
	StorageError  string    `json:"storage_error,omitempty"`
	Latency       string    `json:"api_latency,omitempty"`
	LastCheck     time.Time `json:"last_check"`
}

// Healthy reports whether both the remote API and local storage answered.
func (s Status) Healthy() bool {
	return s.API && s.Storage
}
