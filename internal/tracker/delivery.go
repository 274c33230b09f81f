package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sink delivers captured error envelopes to their destination.
type Sink interface {
	Deliver(ctx context.Context, e TrackedError) error
}

// DefaultDeliveryTimeout bounds a single delivery attempt so a hanging remote
// endpoint cannot stall the flush loop.
const DefaultDeliveryTimeout = 10 * time.Second

// HTTPSink POSTs envelopes as JSON to a remote ingestion endpoint.
//
// The sink's client must NOT use a transport wrapped by Tracker.WrapTransport,
// or every delivery would observe itself.
type HTTPSink struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

func NewHTTPSink(endpoint string, client *http.Client, timeout time.Duration) *HTTPSink {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	return &HTTPSink{endpoint: endpoint, client: client, timeout: timeout}
}

func (s *HTTPSink) Deliver(ctx context.Context, e TrackedError) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("tracker: marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("tracker: ingestion endpoint returned %d", resp.StatusCode)
	}
	return nil
}
