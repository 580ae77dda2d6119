package backoff

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// MaxDelay caps every strategy's computed delay.
const MaxDelay = 60 * time.Second

// Strategy computes the delay before a retry attempt. Attempt numbers are
// zero-based: Delay(0) is the pause after the first failure.
type Strategy interface {
	Delay(attempt int) time.Duration
	Name() string
}

// Strategy names accepted by ForName.
const (
	StrategyExponential = "exponential_backoff"
	StrategyLinear      = "linear_progression"
	StrategyFibonacci   = "fibonacci_sequence"
	StrategyJitter      = "random_jitter"
)

// ForName returns the named strategy with the given base delay.
func ForName(name string, base time.Duration) (Strategy, error) {
	switch name {
	case StrategyExponential:
		return Exponential(base), nil
	case StrategyLinear:
		return Linear(base), nil
	case StrategyFibonacci:
		return Fibonacci(base), nil
	case StrategyJitter:
		return Jitter(base), nil
	default:
		return nil, fmt.Errorf("unknown retry strategy: %s", name)
	}
}

func clamp(d time.Duration) time.Duration {
	if d > MaxDelay {
		return MaxDelay
	}
	return d
}

type exponential struct{ base time.Duration }

// Exponential doubles the delay each attempt: base, 2x, 4x, 8x...
func Exponential(base time.Duration) Strategy { return exponential{base} }

func (s exponential) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Shifting the base directly could overflow, so compare against the
	// cap shifted the other way instead.
	if attempt > 62 || s.base > MaxDelay>>attempt {
		return MaxDelay
	}
	return s.base * (1 << attempt)
}

func (s exponential) Name() string { return StrategyExponential }

type linear struct{ base time.Duration }

// Linear grows the delay arithmetically: base, 2x, 3x, 4x...
func Linear(base time.Duration) Strategy { return linear{base} }

func (s linear) Delay(attempt int) time.Duration {
	return clamp(s.base * time.Duration(attempt+1))
}

func (s linear) Name() string { return StrategyLinear }

var fibTable = []int{1, 1, 2, 3, 5, 8, 13, 21, 34}

type fibonacci struct{ base time.Duration }

// Fibonacci grows the delay along the Fibonacci sequence, clamped at the end
// of the table.
func Fibonacci(base time.Duration) Strategy { return fibonacci{base} }

func (s fibonacci) Delay(attempt int) time.Duration {
	if attempt >= len(fibTable) {
		attempt = len(fibTable) - 1
	}
	if attempt < 0 {
		attempt = 0
	}
	return clamp(s.base * time.Duration(fibTable[attempt]))
}

func (s fibonacci) Name() string { return StrategyFibonacci }

type jitter struct{ base time.Duration }

// Jitter applies linear growth with ±30% uniform noise to avoid thundering
// herds, with a one second floor.
func Jitter(base time.Duration) Strategy { return jitter{base} }

func (s jitter) Delay(attempt int) time.Duration {
	b := float64(s.base) * float64(attempt+1)
	noise := (rand.Float64()*2 - 1) * 0.3 * b
	d := time.Duration(b + noise)
	if d < time.Second {
		d = time.Second
	}
	return clamp(d)
}

func (s jitter) Name() string { return StrategyJitter }
