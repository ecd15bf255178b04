package decay

import (
	"fmt"
	"strings"
)

// ParseContentType validates user input against the known content types.
// The returned value is always usable: on error it is the normalized input,
// whose Lambda falls back to DefaultLambda.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.Known() {
		return ct, fmt.Errorf("%w %q", ErrUnknownContentType, s)
	}
	return ct, nil
}

// ParseQuality validates a quality label. Empty input means DefaultQuality.
// On error the normalized input is returned; its Target falls back to the
// medium target.
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultQuality, nil
	}
	q := Quality(s)
	if !q.Known() {
		return q, fmt.Errorf("%w %q", ErrUnknownQuality, s)
	}
	return q, nil
}
