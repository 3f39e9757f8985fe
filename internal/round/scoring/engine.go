package scoring

import "sort"

// Config holds the scoring constants.
type Config struct {
	BaseScore        int // default: 1000
	TimeLimitSeconds int // default: 60
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BaseScore:        1000,
		TimeLimitSeconds: 60,
	}
}

// Engine grades answers. It holds no state beyond its config and is safe for
// concurrent use.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Result is the outcome of grading one response.
type Result struct {
	IsCorrect bool
	Score     int
}

// Grade decides correctness and computes the time-weighted score in one call
// so the two can never disagree.
func (e *Engine) Grade(correct, response []string, timeSpent int) Result {
	ok := ExactMatch(correct, response)
	raw := 0
	if ok {
		raw = e.config.BaseScore
	}
	return Result{IsCorrect: ok, Score: e.weigh(raw, timeSpent)}
}

// Score returns ceil(((limit - t) / limit) * raw) where raw is BaseScore on an
// exact match and 0 otherwise.
func (e *Engine) Score(correct, response []string, timeSpent int) int {
	return e.Grade(correct, response, timeSpent).Score
}

func (e *Engine) weigh(raw, timeSpent int) int {
	limit := e.config.TimeLimitSeconds
	if limit <= 0 || raw <= 0 {
		return 0
	}
	if timeSpent < 0 {
		timeSpent = 0
	}
	if timeSpent > limit-1 {
		timeSpent = limit - 1
	}
	// Integer ceiling division keeps results exact (t=30 yields exactly 500).
	remaining := limit - timeSpent
	return (remaining*raw + limit - 1) / limit
}

// ExactMatch reports whether response holds the same multiset of answers as
// correct, ignoring order. Neither slice is modified.
func ExactMatch(correct, response []string) bool {
	if len(correct) != len(response) {
		return false
	}
	a := append([]string(nil), correct...)
	b := append([]string(nil), response...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
