// internal/config/types.go
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Duration wraps time.Duration for text unmarshaling (YAML, env vars).
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler. A bare integer
// (no unit suffix) is interpreted as a count of seconds, matching the
// documented ROO_SESSION_TIMEOUT/ROO_CLEANUP_INTERVAL env var contract;
// anything else goes through time.ParseDuration as usual.
func (d *Duration) UnmarshalText(text []byte) error {
	var parsed time.Duration
	if secs, err := strconv.ParseInt(string(text), 10, 64); err == nil {
		parsed = time.Duration(secs) * time.Second
	} else {
		parsed, err = time.ParseDuration(string(text))
		if err != nil {
			return err
		}
	}
	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", text)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration().String()), nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration().String())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
