// Package signing issues and checks HMAC signed links for the export
// download. A link is valid for one session id until its expiry.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrExpired is returned for a well formed link past its expiry.
	ErrExpired = errors.New("link expired")
	// ErrInvalid is returned for a missing, malformed or forged signature.
	ErrInvalid = errors.New("invalid signature")
)

// Signer generates and validates HMAC based signatures.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a Signer.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret, now: time.Now}
}

// Sign returns the hex signature for a session id and unix expiry.
func (s *Signer) Sign(sessionID string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	// The signed payload is "export:<session>:<expiry>".
	fmt.Fprintf(mac, "export:%s:%d", sessionID, expiresUnix)
	return hex.EncodeToString(mac.Sum(nil))
}

// Query returns the expires and signature parameters for a link that is
// valid for ttl, together with the expiry itself.
func (s *Signer) Query(sessionID string, ttl time.Duration) (url.Values, time.Time) {
	expires := s.now().Add(ttl).Truncate(time.Second)
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires.Unix(), 10))
	q.Set("signature", s.Sign(sessionID, expires.Unix()))
	return q, expires
}

// Validate checks the raw query values of a link for sessionID.
func (s *Signer) Validate(sessionID, expires, signature string) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || signature == "" {
		return ErrInvalid
	}
	expected := s.Sign(sessionID, exp)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalid
	}
	if time.Unix(exp, 0).Before(s.now()) {
		return ErrExpired
	}
	return nil
}
