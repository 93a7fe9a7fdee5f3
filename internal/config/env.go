package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Getenv returns the value of key, or fallback when it is unset or empty.
func Getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// envReader collects typed settings and remembers every value that failed to
// parse, so a typo in MAX_BODY_BYTES is reported instead of quietly replaced
// by the default.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, fallback string) string {
	return Getenv(key, fallback)
}

func (r *envReader) integer(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q: not an integer", key, val))
		return fallback
	}
	return n
}

func (r *envReader) boolean(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q: not a boolean", key, val))
		return fallback
	}
	return b
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s=%q: not a duration", key, val))
		return fallback
	}
	return d
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
