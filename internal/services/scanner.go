package services

import (
	"bytes"
	"context"
	"fmt"

	clamd "github.com/dutchcoders/go-clamd"
)

// Scanner inspects uploaded bytes before they are stored.
type Scanner interface {
	Scan(ctx context.Context, data []byte) error
}

// ClamdScanner streams data to a clamd daemon.
type ClamdScanner struct {
	client *clamd.Clamd
}

func NewClamdScanner(url string) *ClamdScanner {
	return &ClamdScanner{client: clamd.NewClamd(url)}
}

// Scan returns a ValidationError when clamd reports a signature.
func (s *ClamdScanner) Scan(_ context.Context, data []byte) error {
	abort := make(chan bool)
	defer close(abort)

	response, err := s.client.ScanStream(bytes.NewReader(data), abort)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// Drain the channel so the reader goroutine can exit.
	var infected bool
	var scanErr error
	for res := range response {
		switch res.Status {
		case clamd.RES_FOUND:
			infected = true
		case clamd.RES_ERROR, clamd.RES_PARSE_ERROR:
			scanErr = fmt.Errorf("scan failed: %s", res.Description)
		}
	}
	if scanErr != nil {
		return scanErr
	}
	if infected {
		return NewValidationError("Infected data")
	}
	return nil
}

// Ping checks that the daemon answers.
func (s *ClamdScanner) Ping(context.Context) error {
	return s.client.Ping()
}
