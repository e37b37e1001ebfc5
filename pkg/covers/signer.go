package covers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// SignedURLTTL is how long a signed cover URL stays valid. Kept short because
// these URLs end up in catalog responses that clients re-request constantly
// anyway.
const SignedURLTTL = 60 * time.Second

// Signer produces short-lived HMAC-signed URLs for cover objects. Signing the
// same object repeatedly within the TTL returns a memoized URL, so a catalog
// page of a few hundred books doesn't recompute a few hundred HMACs per
// request burst.
type Signer struct {
	secret []byte

	mu   sync.Mutex
	memo map[string]memoEntry
	now  func() time.Time
}

type memoEntry struct {
	url       string
	expiresAt time.Time
}

// NewSigner creates a Signer using the given secret.
func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		memo:   map[string]memoEntry{},
		now:    time.Now,
	}
}

// SignedURL returns a relative URL for the object with an expiry and
// signature attached.
func (s *Signer) SignedURL(name string) string {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.memo[name]; ok && now.Before(entry.expiresAt) {
		return entry.url
	}

	// Re-signing at half the TTL keeps the memoized URL from being handed
	// out moments before it expires.
	expiresAt := now.Add(SignedURLTTL)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	signed := fmt.Sprintf("/covers/%s?exp=%s&sig=%s", url.PathEscape(name), exp, s.signature(name, exp))
	s.memo[name] = memoEntry{url: signed, expiresAt: now.Add(SignedURLTTL / 2)}

	return signed
}

// Verify reports whether the signature matches the object name and expiry,
// and whether the expiry is still in the future.
func (s *Signer) Verify(name, exp, sig string) bool {
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return false
	}
	if !s.now().Before(time.Unix(expUnix, 0)) {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(s.signature(name, exp)))
}

func (s *Signer) signature(name, exp string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write([]byte(exp))
	return hex.EncodeToString(mac.Sum(nil))
}
