package common

import (
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

func shouldRetry(status int, err error) bool {
	if err != nil {
		var ne net.Error
		if errors.Is(err, http.ErrHandlerTimeout) {
			return true
		}
		if errors.As(err, &ne) {
			return ne.Timeout()
		}
		// transport-level (refused/reset)
		return true
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status <= 599
}

func computeBackoff(min, max time.Duration, attempt int, retryAfter string) time.Duration {
	if min <= 0 {
		min = 200 * time.Millisecond
	}
	if max <= 0 {
		max = 3 * time.Second
	}
	// honor Retry-After, seconds or HTTP date
	if retryAfter != "" {
		if sec, err := strconv.Atoi(retryAfter); err == nil && sec >= 0 {
			return time.Duration(sec) * time.Second
		}
		if t, err := http.ParseTime(retryAfter); err == nil {
			if d := time.Until(t); d > 0 {
				return d
			}
		}
	}
	// expo + jitter
	if attempt < 0 {
		attempt = 0
	}
	back := min << attempt
	if back > max {
		back = max
	}
	j := time.Duration(rand.Int63n(int64(back) / 2))
	return back/2 + j
}

func headerRetryAfter(h http.Header) string {
	if v := h.Get("Retry-After"); v != "" {
		return v
	}
	if v := h.Get("X-RateLimit-Reset"); v != "" {
		return v
	}
	return ""
}
