package config

import "time"

// Duration wraps time.Duration so it can be written in a config file as a
// plain string ("200ms", "60s") instead of a raw nanosecond integer.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler, which yaml.v3 falls
// back to for scalar nodes that don't implement yaml.Unmarshaler directly.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler, so a loaded config can be
// re-serialized (e.g. by a future `fogctl config dump`).
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
