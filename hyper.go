package vrp

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Reward weights of the weighted average performance measure.
const (
	weightColumnFound = 0.5
	weightRuntime     = 0.1
	weightSpread      = 0.3
	weightObjective   = 0.05
	weightColumnTotal = 0.05
)

// hyperHeuristic scores the pricing strategies like bandit arms and
// picks the next strategy from past performance plus an exploration
// bonus. The exploitation/exploration balance theta tightens while the
// objective keeps improving and relaxes when the search stalls.
type hyperHeuristic struct {
	pool       []string
	measure    string
	acceptance string
	rng        *rand.Rand

	current    string
	theta      float64
	initialObj float64
	lastObj    float64

	iterations map[string]int
	totalIters int
	q          map[string]float64
	bestTime   float64
	added      map[string]int
	improved   map[string]int
}

// HyperHistory is the yaml document the strategy scores persist in
// between runs, so that a warm start skips the exploration phase.
type HyperHistory struct {
	Q          map[string]float64 `yaml:"q"`
	Iterations map[string]int     `yaml:"iterations"`
	TotalIters int                `yaml:"total_iterations"`
	Theta      float64            `yaml:"theta"`
}

func newHyperHeuristic(measure, acceptance string, seed int64) *hyperHeuristic {
	pool := []string{STRAT_BEST_EDGES1, STRAT_BEST_EDGES2, STRAT_BEST_PATHS, STRAT_BOUND_STOPS, STRAT_EXACT}
	h := &hyperHeuristic{
		pool:       pool,
		measure:    measure,
		acceptance: acceptance,
		rng:        rand.New(rand.NewSource(seed)),
		current:    pool[0],
		theta:      0.99,
		iterations: map[string]int{},
		q:          map[string]float64{},
		added:      map[string]int{},
		improved:   map[string]int{},
		bestTime:   math.Inf(1),
	}
	return h
}

func (h *hyperHeuristic) setInitial(obj float64) {
	h.initialObj = obj
	h.lastObj = obj
}

// pickStrategy is an upper confidence bound selection: average reward
// plus a bonus that shrinks with the number of times an arm was tried.
func (h *hyperHeuristic) pickStrategy() string {
	for _, s := range h.pool {
		if h.iterations[s] == 0 {
			return s
		}
	}
	best := []string{}
	bestScore := math.Inf(-1)
	for _, s := range h.pool {
		explore := math.Sqrt(2 * math.Log(float64(h.totalIters)) / float64(h.iterations[s]))
		score := (1-h.theta)*h.q[s] + h.theta*explore
		if score > bestScore+1e-12 {
			bestScore = score
			best = []string{s}
		} else if score > bestScore-1e-12 {
			best = append(best, s)
		}
	}
	return best[h.rng.Intn(len(best))]
}

// report updates the scores after one pricing round and returns the
// strategy for the next round.
func (h *hyperHeuristic) report(strategy string, runtime time.Duration, producedColumn bool, newObj float64) string {
	h.totalIters++
	h.iterations[strategy]++
	if producedColumn {
		h.added[strategy]++
	}
	improved := newObj < h.lastObj-1e-9
	if improved {
		h.improved[strategy]++
		h.theta = 0.99
	} else {
		h.theta = math.Max(h.theta-0.1, 0.1)
	}

	secs := math.Max(runtime.Seconds(), 1e-6)
	if secs < h.bestTime {
		h.bestTime = secs
	}

	var reward float64
	switch h.measure {
	case MEASURE_REL_IMPROVE:
		denom := math.Max(math.Abs(h.initialObj), 1)
		reward = (h.lastObj - newObj) / denom / secs
	default: // weighted average
		colBasic := 0.0
		if producedColumn {
			colBasic = 1
		}
		runtimeNorm := h.bestTime / secs
		spread := float64(h.improved[strategy]) / float64(h.iterations[strategy])
		objNorm := 0.0
		if improved && h.initialObj != 0 {
			objNorm = (h.lastObj - newObj) / math.Abs(h.initialObj)
		}
		colTotal := float64(h.added[strategy]) / float64(h.iterations[strategy])
		reward = weightColumnFound*colBasic +
			weightRuntime*runtimeNorm +
			weightSpread*spread +
			weightObjective*objNorm +
			weightColumnTotal*colTotal
	}
	n := float64(h.iterations[strategy])
	h.q[strategy] += (reward - h.q[strategy]) / n

	if h.moveAccepted(newObj, improved) {
		h.current = h.pickStrategy()
	}
	h.lastObj = newObj
	return h.current
}

func (h *hyperHeuristic) moveAccepted(newObj float64, improved bool) bool {
	switch h.acceptance {
	case ACCEPT_TABLE:
		// Stick with a strategy as long as it keeps improving.
		return !improved
	case ACCEPT_OBJECTIVE:
		if improved {
			return false
		}
		// Worsening stagnation is accepted with decaying probability.
		gap := (newObj - h.lastObj) / math.Max(math.Abs(h.lastObj), 1)
		return h.rng.Float64() < math.Exp(-gap)
	default:
		return true
	}
}

func (h *hyperHeuristic) loadHistory(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading hyper history: %w", err)
	}
	var hist HyperHistory
	if err := yaml.Unmarshal(data, &hist); err != nil {
		return fmt.Errorf("parsing hyper history %s: %w", path, err)
	}
	if hist.Q != nil {
		h.q = hist.Q
	}
	if hist.Iterations != nil {
		h.iterations = hist.Iterations
	}
	h.totalIters = hist.TotalIters
	if hist.Theta > 0 {
		h.theta = hist.Theta
	}
	Log(3, "Loaded hyper heuristic history from %s (%d iterations)\n", path, h.totalIters)
	return nil
}

func (h *hyperHeuristic) saveHistory(path string) error {
	hist := HyperHistory{Q: h.q, Iterations: h.iterations, TotalIters: h.totalIters, Theta: h.theta}
	data, err := yaml.Marshal(&hist)
	if err != nil {
		return fmt.Errorf("encoding hyper history: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hyper history %s: %w", path, err)
	}
	return nil
}
