package app

import (
	"sync/atomic"

	"adaptive-eval-service/internal/domain"
)

// perfValues maps performance conditions to snapshot field readers.
var perfValues = map[domain.Condition]func(domain.PerformanceSnapshot) float64{
	domain.CondOverallProgress:   func(s domain.PerformanceSnapshot) float64 { return s.OverallProgress },
	domain.CondAverageScore:      func(s domain.PerformanceSnapshot) float64 { return s.AverageScore },
	domain.CondTotalTimeSpent:    func(s domain.PerformanceSnapshot) float64 { return s.TotalTimeSpent },
	domain.CondEvaluationsPassed: func(s domain.PerformanceSnapshot) float64 { return s.EvaluationsPassed },
	domain.CondLessonsCompleted:  func(s domain.PerformanceSnapshot) float64 { return s.LessonsCompleted },
}

// evalPredicates maps evaluation conditions to context predicates.
// completed_60_percent_intro is a documented always-true placeholder carried
// over as-is; intro resource tracking does not exist yet.
var evalPredicates = map[domain.Condition]func(*domain.EvaluationContext) bool{
	domain.CondPassedDiagnostic: func(c *domain.EvaluationContext) bool { return c.Attempt.Passed },
	domain.CondPassedModuleEval: func(c *domain.EvaluationContext) bool { return c.Attempt.Passed },
	domain.CondScoreBetween5070: func(c *domain.EvaluationContext) bool {
		return c.Attempt.Percentage >= 50 && c.Attempt.Percentage <= 70
	},
	domain.CondRepeatedEvalOnce: func(c *domain.EvaluationContext) bool { return len(c.AllAttempts) > 1 },
	domain.CondFailedEvalTwice:  func(c *domain.EvaluationContext) bool { return c.FailedAttempts() >= 2 },
	domain.CondCompletedIntro60: func(c *domain.EvaluationContext) bool { return true },
}

// TreeStats summarizes both decision trees.
type TreeStats struct {
	Depth     int `json:"depth"`
	NodeCount int `json:"nodeCount"`
}

// DecisionEngine holds the two static decision trees. The evaluation tree is
// immutable for the engine's lifetime; the performance tree can be hot-swapped
// and is read through an atomic pointer so concurrent traversals never see a
// partial update.
type DecisionEngine struct {
	perf atomic.Pointer[domain.Node]
	eval *domain.Node
}

func NewDecisionEngine(performanceTree, evaluationTree *domain.Node) *DecisionEngine {
	e := &DecisionEngine{eval: evaluationTree}
	e.perf.Store(performanceTree)
	return e
}

// EvaluatePerformance walks the performance tree against the snapshot and
// returns the first action encountered, or nil. Descent compares the value
// named by the node's condition with `value >= threshold`; a missing child or
// unknown condition stops the walk.
func (e *DecisionEngine) EvaluatePerformance(snapshot domain.PerformanceSnapshot) *domain.RecommendationAction {
	node := e.perf.Load()
	for node != nil {
		if node.Action != nil {
			action := *node.Action
			return &action
		}
		read, ok := perfValues[node.Condition]
		if !ok {
			return nil
		}
		if read(snapshot) >= node.Threshold {
			node = node.True
		} else {
			node = node.False
		}
	}
	return nil
}

// EvaluateAttempt walks the evaluation tree against the context and returns
// the actions of every node visited along the path, in order. Unlike the
// performance walk, an action on an interior node is recorded and descent
// continues; a node with no condition, or a missing child, ends the walk with
// whatever was collected.
func (e *DecisionEngine) EvaluateAttempt(ectx *domain.EvaluationContext) []domain.RecommendationAction {
	var actions []domain.RecommendationAction
	node := e.eval
	for node != nil {
		if node.Action != nil {
			actions = append(actions, *node.Action)
		}
		pred, ok := evalPredicates[node.Condition]
		if !ok {
			break
		}
		if pred(ectx) {
			node = node.True
		} else {
			node = node.False
		}
	}
	return actions
}

// UpdatePerformanceTree atomically installs a new performance tree. The tree
// must not be mutated after being passed in.
func (e *DecisionEngine) UpdatePerformanceTree(root *domain.Node) {
	e.perf.Store(root)
}

// Stats reports the combined shape of both trees: the deeper of the two
// depths and the total node count.
func (e *DecisionEngine) Stats() TreeStats {
	perf := e.perf.Load()
	depth := perf.Depth()
	if d := e.eval.Depth(); d > depth {
		depth = d
	}
	return TreeStats{
		Depth:     depth,
		NodeCount: perf.Count() + e.eval.Count(),
	}
}
