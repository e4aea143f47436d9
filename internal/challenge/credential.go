package challenge

import "strings"

// Cookie names the Octofence gate expects on authorized requests.
const (
	CookieToken       = "octofence_jslc"
	CookieFingerprint = "octofence_jslc_fp"
)

// Credential is the set of cookie values derived from one solved challenge.
type Credential struct {
	Values map[string]string `json:"values"`
}

// NewCredential builds a credential from a challenge token and a client
// fingerprint.
func NewCredential(token, fingerprint string) Credential {
	return Credential{Values: map[string]string{
		CookieToken:       token,
		CookieFingerprint: fingerprint,
	}}
}

// Valid reports whether both required cookie values are present and
// non-empty. An invalid credential must never be cached or sent.
func (c Credential) Valid() bool {
	return c.Values[CookieToken] != "" && c.Values[CookieFingerprint] != ""
}

// CookieHeader renders the credential as a Cookie header value, token
// first, in the "name=value;" form the site expects.
func (c Credential) CookieHeader() string {
	var b strings.Builder
	for _, name := range []string{CookieToken, CookieFingerprint} {
		if v := c.Values[name]; v != "" {
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(v)
			b.WriteByte(';')
		}
	}
	return b.String()
}
