// Package auth produces the signed timestamps the AR engine requests while
// authenticating a session.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Signature is a fresh credential proof handed to the engine.
type Signature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
}

// Sign computes a signature for appID using the wall clock.
func Sign(appID, secret string) Signature {
	return signAt(time.Now(), appID, secret)
}

func signAt(now time.Time, appID, secret string) Signature {
	ts := unixSecondsRounded(now)
	stamp := strconv.FormatInt(ts, 10)
	sum := sha256.Sum256([]byte(stamp + secret + appID + stamp))
	return Signature{
		Signature: strings.ToUpper(hex.EncodeToString(sum[:])),
		Timestamp: ts,
	}
}

// unixSecondsRounded rounds to the nearest second, half up.
func unixSecondsRounded(t time.Time) int64 {
	ms := t.UnixMilli()
	secs := ms / 1000
	if ms%1000 >= 500 {
		secs++
	}
	return secs
}

// Signer binds credentials so the engine's auth callback can be passed
// around as a plain function.
type Signer struct {
	AppID  string
	Secret string
	Now    func() time.Time
}

// NewSigner returns a Signer using the wall clock.
func NewSigner(appID, secret string) *Signer {
	return &Signer{AppID: appID, Secret: secret, Now: time.Now}
}

// Sign computes a new signature on every call.
func (s *Signer) Sign() Signature {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return signAt(now(), s.AppID, s.Secret)
}
