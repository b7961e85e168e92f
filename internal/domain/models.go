package domain

import "time"

// EvaluationType distinguishes how grading side effects are applied.
type EvaluationType string

const (
	EvaluationDiagnostic EvaluationType = "diagnostic"
	EvaluationQuiz       EvaluationType = "quiz"
	EvaluationProject    EvaluationType = "project"
)

// TargetLevel is the difficulty classification used when resolving lesson targets.
type TargetLevel string

const (
	LevelCore     TargetLevel = "core"
	LevelRemedial TargetLevel = "remedial"
	LevelAdvanced TargetLevel = "advanced"
)

// DiagnosticLevel buckets a diagnostic score.
type DiagnosticLevel string

const (
	DiagnosticLow     DiagnosticLevel = "low"
	DiagnosticAverage DiagnosticLevel = "average"
	DiagnosticHigh    DiagnosticLevel = "high"
)

// ModuleStatus tracks per-student module completion.
type ModuleStatus string

const (
	ModuleInProgress ModuleStatus = "in_progress"
	ModuleCompleted  ModuleStatus = "completed"
)

// Question models a gradable multiple-choice item. CorrectOptions holds the
// index set of correct options; grading compares the submitted set against it
// with exact set equality.
type Question struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options"`
	CorrectOptions []int    `json:"correctOptions"`
	Points         int      `json:"points"` // defaults to 1 if zero
}

// Evaluation is a gradeable assessment attached to a module or a lesson.
// Exactly one of ModuleID/LessonID is expected to be set.
type Evaluation struct {
	ID           string         `json:"id"`
	CourseID     string         `json:"courseId"`
	ModuleID     string         `json:"moduleId,omitempty"`
	LessonID     string         `json:"lessonId,omitempty"`
	Type         EvaluationType `json:"type"`
	Title        string         `json:"title"`
	Questions    []Question     `json:"questions"`
	MaxScore     int            `json:"maxScore"`
	PassingScore *int           `json:"passingScore,omitempty"` // nil means default 70
	MaxAttempts  int            `json:"maxAttempts"`
}

// AnswerSet maps question IDs to the selected option indexes.
type AnswerSet map[string][]int

// EvaluationAttempt is one graded submission. Immutable after creation.
type EvaluationAttempt struct {
	ID            string    `json:"id"`
	EvaluationID  string    `json:"evaluationId"`
	StudentID     string    `json:"studentId"`
	AttemptNumber int       `json:"attemptNumber"`
	Answers       AnswerSet `json:"answers"`
	Score         int       `json:"score"`
	Percentage    int       `json:"percentage"`
	Passed        bool      `json:"passed"`
	TimeSpent     int       `json:"timeSpentSeconds"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// EvaluationContext bundles everything the decision engine needs for one run.
// Built per decision run, never persisted.
type EvaluationContext struct {
	StudentID   string
	CourseID    string
	Evaluation  Evaluation
	Attempt     EvaluationAttempt
	AllAttempts []EvaluationAttempt // ordered by attempt number ascending
}

// FailedAttempts counts the non-passing attempts in the history.
func (c *EvaluationContext) FailedAttempts() int {
	n := 0
	for _, a := range c.AllAttempts {
		if !a.Passed {
			n++
		}
	}
	return n
}

// PerformanceSnapshot is the numeric input of the performance decision tree.
type PerformanceSnapshot struct {
	OverallProgress   float64 `json:"overallProgress"`
	AverageScore      float64 `json:"averageScore"`
	TotalTimeSpent    float64 `json:"totalTimeSpent"` // minutes
	EvaluationsPassed float64 `json:"evaluationsPassed"`
	LessonsCompleted  float64 `json:"lessonsCompleted"`
}

// ModuleProgress is the per-student per-module status row, upserted as a
// grading side effect.
type ModuleProgress struct {
	StudentID       string          `json:"studentId"`
	ModuleID        string          `json:"moduleId"`
	Status          ModuleStatus    `json:"status"`
	DiagnosticLevel DiagnosticLevel `json:"diagnosticLevel,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Lesson is the slice of lesson data the resolver needs.
type Lesson struct {
	ID          string      `json:"id"`
	ModuleID    string      `json:"moduleId"`
	Title       string      `json:"title"`
	TargetLevel TargetLevel `json:"targetLevel"`
	OrderIndex  int         `json:"orderIndex"`
}

// CourseResource is supplemental course material (PDFs, links).
type CourseResource struct {
	ID           string `json:"id"`
	CourseID     string `json:"courseId"`
	Title        string `json:"title"`
	ResourceType string `json:"resourceType"`
	URL          string `json:"url"`
}

// Recommendation is the persisted, user-facing record derived from a
// RecommendationAction after content resolution. IsRead/IsApplied are mutated
// later by user actions, outside this service's core.
type Recommendation struct {
	ID                     string    `json:"id"`
	StudentID              string    `json:"studentId"`
	CourseID               string    `json:"courseId"`
	Type                   string    `json:"type"`
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	Priority               Priority  `json:"priority"`
	RecommendedContentID   string    `json:"recommendedContentId,omitempty"`
	RecommendedContentType string    `json:"recommendedContentType,omitempty"`
	ActionURL              string    `json:"actionUrl,omitempty"`
	DedupKey               string    `json:"-"`
	IsRead                 bool      `json:"isRead"`
	IsApplied              bool      `json:"isApplied"`
	CreatedAt              time.Time `json:"createdAt"`
}
