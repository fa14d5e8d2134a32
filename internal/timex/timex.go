// Package timex provides small time helpers: the millisecond logical-clock
// source used for entry timestamps, and a JSON-friendly Duration.
package timex

import (
	"encoding/json"
	"fmt"
	"time"
)

// NowMilli returns the current wall-clock time as milliseconds since the
// Unix epoch. Writers stamp entries with this value; stores only ever
// compare the stamps, never substitute their own clock.
func NowMilli() int64 {
	return time.Now().UnixMilli()
}

// Clock yields logical timestamps. Production code uses SystemClock; tests
// substitute a fixed or stepping implementation.
type Clock interface {
	NowMilli() int64
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) NowMilli() int64 { return NowMilli() }

// Duration wraps time.Duration so JSON configs can specify intervals either
// as strings like "3s" or as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %v", v)
	}
}
