package entropy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"

	"github.com/tidwall/gjson"
)

// Reason classifies why a remote attempt failed.
type Reason string

const (
	ReasonTransport Reason = "transport"
	ReasonTimeout   Reason = "timeout"
	ReasonStatus    Reason = "status"
	ReasonPayload   Reason = "payload"
)

// maxSample is the largest value of a uint8 sample.
const maxSample = 255

// maxPayloadBytes caps how much of the response body is read.
const maxPayloadBytes = 64 << 10

// RemoteError describes a failed remote attempt. It is logged and counted,
// never returned from Resolve.
type RemoteError struct {
	Reason Reason
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote entropy %s: %v", e.Reason, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// remoteOutcome holds either a raw sample or the error that prevented one.
// The zero value is a failure: only a received sample sets received.
type remoteOutcome struct {
	sample   int
	received bool
	err      *RemoteError
}

func (o remoteOutcome) ok() bool { return o.received }

func remoteSample(sample int) remoteOutcome {
	return remoteOutcome{sample: sample, received: true}
}

func remoteFailed(reason Reason, err error) remoteOutcome {
	return remoteOutcome{err: &RemoteError{Reason: reason, Err: err}}
}

// fetchRemote performs one bounded GET against the configured endpoint.
func (r *Resolver) fetchRemote(ctx context.Context) remoteOutcome {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.requestURL, nil)
	if err != nil {
		return remoteFailed(ReasonTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return remoteFailed(classify(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return remoteFailed(ReasonStatus, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return remoteFailed(classify(err), fmt.Errorf("read body: %w", err))
	}
	sample, err := parseSample(body)
	if err != nil {
		return remoteFailed(ReasonPayload, err)
	}
	return remoteSample(sample)
}

func classify(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}

// parseSample extracts data[0] from a body shaped like
// {"type":"uint8","length":1,"data":[123],"success":true}.
func parseSample(body []byte) (int, error) {
	if !gjson.ValidBytes(body) {
		return 0, errors.New("body is not valid JSON")
	}
	if s := gjson.GetBytes(body, "success"); s.Exists() && !s.Bool() {
		return 0, errors.New("service reported success=false")
	}
	if !gjson.GetBytes(body, "data").IsArray() {
		return 0, errors.New("data is missing or not an array")
	}
	v := gjson.GetBytes(body, "data.0")
	if !v.Exists() {
		return 0, errors.New("data is empty")
	}
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("data[0] is %s, want a number", v.Type)
	}
	f := v.Float()
	if f != math.Trunc(f) || f < 0 || f > maxSample {
		return 0, fmt.Errorf("data[0] = %s is not a uint8", v.Raw)
	}
	return int(f), nil
}
