package guard

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	// UICookieName carries the experience UI's state between requests
	UICookieName = "_gatehouse_ui"

	signatureSuffix = ".sig"
)

// UICookie is the structured payload of the signed UI cookie
type UICookie struct {
	AppID          string `json:"appId,omitempty"`
	OrganizationID string `json:"organizationId,omitempty"`
}

// CookieCodec signs and verifies the UI cookie. Signatures are HMAC-SHA256
// over "name=value" stored in a sibling "<name>.sig" cookie; multiple keys
// allow rotation, with the first key used for signing.
type CookieCodec struct {
	keys [][]byte
}

// NewCookieCodec creates a codec from the configured signing keys
func NewCookieCodec(keys []string) *CookieCodec {
	c := &CookieCodec{}
	for _, key := range keys {
		if key != "" {
			c.keys = append(c.keys, []byte(key))
		}
	}
	return c
}

// Decode parses the signed UI cookie from the request. It never fails loudly:
// a missing cookie, a bad signature, or a malformed payload all return false.
func (c *CookieCodec) Decode(r *http.Request) (UICookie, bool) {
	cookie, err := r.Cookie(UICookieName)
	if err != nil || cookie.Value == "" {
		return UICookie{}, false
	}

	sig, err := r.Cookie(UICookieName + signatureSuffix)
	if err != nil || sig.Value == "" {
		return UICookie{}, false
	}

	if !c.verify(UICookieName+"="+cookie.Value, sig.Value) {
		return UICookie{}, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return UICookie{}, false
	}

	var parsed UICookie
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return UICookie{}, false
	}

	return parsed, true
}

// Encode writes the signed UI cookie pair to the response
func (c *CookieCodec) Encode(w http.ResponseWriter, value UICookie) error {
	if len(c.keys) == 0 {
		return fmt.Errorf("no cookie signing keys configured")
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal UI cookie: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)

	http.SetCookie(w, &http.Cookie{
		Name:     UICookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     UICookieName + signatureSuffix,
		Value:    c.sign(UICookieName + "=" + encoded),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (c *CookieCodec) sign(data string) string {
	mac := hmac.New(sha256.New, c.keys[0])
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *CookieCodec) verify(data, signature string) bool {
	decoded, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	for _, key := range c.keys {
		mac := hmac.New(sha256.New, key)
		mac.Write([]byte(data))
		if hmac.Equal(mac.Sum(nil), decoded) {
			return true
		}
	}

	return false
}
