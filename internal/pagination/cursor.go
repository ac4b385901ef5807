package pagination

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// cursorPrefix versions the cursor payload so the format can change without
// old tokens decoding into something unexpected.
const cursorPrefix = "v1:"

// EncodeCursor wraps a next-page URL into an opaque cursor.
func EncodeCursor(nextURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + nextURL))
}

// DecodeCursor returns the URL wrapped by cursor. The second return value is
// false for anything that is not well-formed EncodeCursor output; in that case
// the returned string is always empty.
func DecodeCursor(cursor string) (string, bool) {
	if cursor == "" {
		return "", false
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", false
	}

	payload, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return "", false
	}

	u, err := url.Parse(payload)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	return payload, true
}
