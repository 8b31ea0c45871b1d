// Package ratelimit implements fixed-window request counting per key and
// endpoint class.
//
// A window opens on the first request for a key and lasts for the class
// window; once it elapses the count starts again from zero. This is an
// approximation of a sliding window that permits up to twice the limit across
// a window boundary, which is acceptable for abuse prevention.
package ratelimit

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Class groups endpoints that share one limit.
type Class string

const (
	ClassRegister Class = "register"
	ClassLogin    Class = "login"
	ClassRefresh  Class = "refresh"
	ClassLogout   Class = "logout"
	ClassMusic    Class = "music"
)

// ErrUnknownClass is returned when no policy exists for a class.
var ErrUnknownClass = errors.New("ratelimit: unknown class")

// Policy is the limit for one class. A zero Limit means unlimited: requests
// are admitted without being counted.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Unlimited reports whether the policy never denies.
func (p Policy) Unlimited() bool { return p.Limit <= 0 || p.Window <= 0 }

// Policies maps classes to their limits.
type Policies map[Class]Policy

// DefaultPolicies returns the per-IP limits enforced in production.
func DefaultPolicies() Policies {
	return Policies{
		ClassRegister: {Limit: 5, Window: time.Hour},
		ClassLogin:    {Limit: 5, Window: time.Minute},
		ClassRefresh:  {Limit: 20, Window: time.Hour},
		ClassLogout:   {Limit: 0},
		ClassMusic:    {Limit: 100, Window: time.Minute},
	}
}

// PoliciesFromEnv returns a copy of base with overrides read from
// RATELIMIT_{CLASS}_REQUESTS and RATELIMIT_{CLASS}_WINDOW_SEC, e.g.
// RATELIMIT_LOGIN_REQUESTS=50. Invalid values are ignored.
func PoliciesFromEnv(base Policies) Policies {
	out := make(Policies, len(base))
	for class, p := range base {
		prefix := "RATELIMIT_" + strings.ToUpper(string(class))

		if val := os.Getenv(prefix + "_REQUESTS"); val != "" {
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				p.Limit = n
			}
		}
		if val := os.Getenv(prefix + "_WINDOW_SEC"); val != "" {
			if sec, err := strconv.Atoi(val); err == nil && sec > 0 {
				p.Window = time.Duration(sec) * time.Second
			}
		}

		out[class] = p
	}
	return out
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int // 0 when the class is unlimited
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long a denied caller should wait, at least a second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait < time.Second {
		return time.Second
	}
	return wait.Round(time.Second)
}

// Limiter counts an attempt for key in class and reports whether it is
// admitted. The increment and the check are atomic per key.
type Limiter interface {
	Admit(ctx context.Context, key string, class Class) (Decision, error)
}

func unlimited() Decision {
	return Decision{Allowed: true, Remaining: -1}
}

func bucketKey(class Class, key string) string {
	return string(class) + ":" + key
}
