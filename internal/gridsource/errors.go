package gridsource

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

// Fetch failure classes. The coordinator maps these onto user-visible
// messages; none of them are fatal and none discard cached samples.
var (
	ErrTimeout     = errors.New("request timed out")
	ErrRateLimited = errors.New("rate limited")
	ErrUnavailable = errors.New("service unavailable")
	ErrOffline     = errors.New("offline")
)

// classifyTransportError maps a transport-level error from http.Client.Do
// to one of the taxonomy sentinels, or returns it unchanged.
func classifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return ErrTimeout
		}
		var netErr *net.OpError
		if errors.As(urlErr, &netErr) {
			// Connection refused, unreachable networks, DNS failures:
			// treat as local connectivity loss.
			return ErrOffline
		}
	}
	return err
}

// classifyStatus maps an HTTP status to a taxonomy sentinel, or nil for
// success.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected status %d %s", status, http.StatusText(status))
	}
}
