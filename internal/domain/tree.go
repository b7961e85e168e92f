package domain

// Priority orders recommendations for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Condition is the closed set of predicate kinds a decision tree node may
// carry. Performance conditions read a named field of the numeric snapshot;
// evaluation conditions are boolean predicates over the evaluation context.
type Condition string

const (
	// Performance tree conditions (numeric, compared as value >= threshold).
	CondOverallProgress   Condition = "overall_progress"
	CondAverageScore      Condition = "average_score"
	CondTotalTimeSpent    Condition = "total_time_spent"
	CondEvaluationsPassed Condition = "evaluations_passed"
	CondLessonsCompleted  Condition = "lessons_completed"

	// Evaluation tree conditions (boolean).
	CondPassedDiagnostic Condition = "did_pass_diagnostic"
	CondPassedModuleEval Condition = "did_pass_module_eval"
	CondScoreBetween5070 Condition = "score_between_50_70"
	CondRepeatedEvalOnce Condition = "repeated_eval_once"
	CondFailedEvalTwice  Condition = "failed_eval_twice"
	CondCompletedIntro60 Condition = "completed_60_percent_intro"
)

// RecommendationAction is an abstract, unpersisted suggestion produced by the
// decision engine. Target is symbolic; the content resolver maps it to
// concrete content.
type RecommendationAction struct {
	ID       string
	Type     string
	Target   string
	Priority Priority
	Title    string
	Message  string
}

// Node is one node of a static decision tree. A node may carry an action, a
// condition with children, or both: the evaluation tree records actions on
// interior nodes and keeps descending, while the performance tree stops at
// the first action it sees. A node with neither action nor condition is a
// dead end and terminates traversal.
//
// Trees are built once at startup and never mutated; shared unsynchronized
// reads are safe.
type Node struct {
	Action    *RecommendationAction
	Condition Condition
	Threshold float64
	True      *Node
	False     *Node
}

// Depth returns the height of the tree rooted at n (nil counts as 0, a leaf
// as 1).
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	td, fd := n.True.Depth(), n.False.Depth()
	if td > fd {
		return 1 + td
	}
	return 1 + fd
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	return 1 + n.True.Count() + n.False.Count()
}
