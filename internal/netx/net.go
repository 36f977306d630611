// Package netx has small HTTP helpers shared by the backend client.
package netx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodySize bounds how much of a response body is read.
const MaxBodySize = 4 << 20

var ErrBodyTooLarge = errors.New("response body too large")

// ReadBody reads resp.Body up to MaxBodySize and closes it.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(b) > MaxBodySize {
		return nil, ErrBodyTooLarge
	}
	return b, nil
}

// IsGatewayStatus reports statuses that mean the backend itself is not
// reachable right now.
func IsGatewayStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Snippet returns at most n bytes of b as a single-line string.
func Snippet(b []byte, n int) string {
	s := strings.Join(strings.Fields(string(b)), " ")
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
