// Package token decodes the session credential issued by the backend.
//
// The credential is a compact JWT (header.payload.signature). Only the
// payload is read here, to learn the subject and the expiry; the signature
// is not verified. The backend verifies every authenticated call, so the
// result is a hint for the UI and never a trust decision.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned for any credential whose payload cannot be read or
// lacks a usable subject or expiry.
var ErrDecode = errors.New("credential decode failed")

// Claims are the parts of the payload the client cares about.
type Claims struct {
	Subject int64
	Expiry  time.Time
}

// ValidAt reports whether the credential is still usable at t.
func (c Claims) ValidAt(t time.Time) bool {
	return t.Before(c.Expiry)
}

// parser is only used for its base64url segment decoding; padded segments
// are accepted the way browsers' atob accepts them.
var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts subject and expiry from the payload segment of raw.
//
// A subject that is not an integer, and a missing or malformed exp claim,
// are decode failures. exp is read as epoch seconds.
func Decode(raw string) (Claims, error) {
	parts := strings.SplitN(raw, ".", 3)
	if len(parts) < 3 {
		return Claims{}, fmt.Errorf("%w: want 3 segments, got %d", ErrDecode, len(parts))
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: payload: %v", ErrDecode, err)
	}

	var mc jwt.MapClaims
	if err := json.Unmarshal(payload, &mc); err != nil {
		return Claims{}, fmt.Errorf("%w: payload json: %v", ErrDecode, err)
	}

	sub, err := subject(mc["sub"])
	if err != nil {
		return Claims{}, err
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: exp: %v", ErrDecode, err)
	}
	if exp == nil {
		return Claims{}, fmt.Errorf("%w: exp missing", ErrDecode)
	}

	return Claims{Subject: sub, Expiry: exp.Time}, nil
}

// Valid reports whether raw decodes and has not expired at now.
func Valid(raw string, now time.Time) bool {
	c, err := Decode(raw)
	if err != nil {
		return false
	}
	return c.ValidAt(now)
}

// subject accepts "123" as well as a bare JSON number.
func subject(v any) (int64, error) {
	switch s := v.(type) {
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: sub %q is not a number", ErrDecode, s)
		}
		return id, nil
	case float64:
		if s != math.Trunc(s) || math.IsInf(s, 0) {
			return 0, fmt.Errorf("%w: sub %v is not an integer", ErrDecode, s)
		}
		return int64(s), nil
	case nil:
		return 0, fmt.Errorf("%w: sub missing", ErrDecode)
	default:
		return 0, fmt.Errorf("%w: sub has type %T", ErrDecode, v)
	}
}
