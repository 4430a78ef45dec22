package domain

import "fmt"

// RegistryError is a structured rejection from the registry publish endpoint.
// It is a per-record failure, never fatal to the run.
type RegistryError struct {
	StatusCode int
	Body       string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry returned HTTP %d: %s", e.StatusCode, e.Body)
}
