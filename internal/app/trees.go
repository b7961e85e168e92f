package app

import "adaptive-eval-service/internal/domain"

// Symbolic recommendation targets. Lesson-slot targets encode the level as a
// keyword inside the string; the resolver maps them to concrete lessons.
const (
	TargetFirstRemedialLesson = "FIRST_REMEDIAL_LESSON"
	TargetFirstAdvancedLesson = "FIRST_ADVANCED_LESSON"
	TargetNextCoreLesson      = "NEXT_CORE_LESSON"
	TargetModuleResources     = "MODULE_GENERAL_RESOURCES"
	TargetRetryEvaluation     = "RETRY_SAME_EVALUATION"
	TargetCourseIntroduction  = "COURSE_INTRODUCTION"
	TargetPendingEvaluations  = "PENDING_EVALUATIONS"
)

// NewPerformanceTree builds the static performance tree. Numeric conditions
// descend with value >= threshold; the walk stops at the first action.
func NewPerformanceTree() *domain.Node {
	return &domain.Node{
		Condition: domain.CondOverallProgress,
		Threshold: 10,
		False: &domain.Node{
			Action: &domain.RecommendationAction{
				ID:       "start_here",
				Type:     "getting_started",
				Target:   TargetCourseIntroduction,
				Priority: domain.PriorityHigh,
				Title:    "Welcome! Start here",
				Message:  "Begin with the first lesson of your course to build momentum.",
			},
		},
		True: &domain.Node{
			Condition: domain.CondAverageScore,
			Threshold: 70,
			False: &domain.Node{
				Action: &domain.RecommendationAction{
					ID:       "review_fundamentals",
					Type:     "remedial",
					Target:   TargetFirstRemedialLesson,
					Priority: domain.PriorityHigh,
					Title:    "Review the fundamentals",
					Message:  "Your average score suggests revisiting the basics before moving on.",
				},
			},
			True: &domain.Node{
				Condition: domain.CondLessonsCompleted,
				Threshold: 10,
				False: &domain.Node{
					Condition: domain.CondEvaluationsPassed,
					Threshold: 3,
					False: &domain.Node{
						Action: &domain.RecommendationAction{
							ID:       "take_evaluations",
							Type:     "assessment",
							Target:   TargetPendingEvaluations,
							Priority: domain.PriorityMedium,
							Title:    "Check your understanding",
							Message:  "Take the pending evaluations to validate what you have learned so far.",
						},
					},
					True: &domain.Node{
						Action: &domain.RecommendationAction{
							ID:       "keep_pace",
							Type:     "encouragement",
							Target:   TargetNextCoreLesson,
							Priority: domain.PriorityLow,
							Title:    "Keep up the pace",
							Message:  "You are doing well. Continue with the next lesson.",
						},
					},
				},
				True: &domain.Node{
					Condition: domain.CondTotalTimeSpent,
					Threshold: 600,
					True: &domain.Node{
						Action: &domain.RecommendationAction{
							ID:       "advanced_content",
							Type:     "advanced",
							Target:   TargetFirstAdvancedLesson,
							Priority: domain.PriorityMedium,
							Title:    "Ready for a challenge",
							Message:  "You have covered a lot of ground. Try the advanced material.",
						},
					},
					False: &domain.Node{
						Action: &domain.RecommendationAction{
							ID:       "explore_more",
							Type:     "enrichment",
							Target:   TargetModuleResources,
							Priority: domain.PriorityLow,
							Title:    "Explore the extras",
							Message:  "Browse the supplemental course material to deepen your knowledge.",
						},
					},
				},
			},
		},
	}
}

// NewEvaluationTree builds the static evaluation-outcome tree. Boolean
// conditions; actions on interior nodes are collected and the walk continues.
func NewEvaluationTree() *domain.Node {
	return &domain.Node{
		Condition: domain.CondPassedModuleEval,
		True: &domain.Node{
			Condition: domain.CondScoreBetween5070,
			True: &domain.Node{
				Action: &domain.RecommendationAction{
					ID:       "suggest_retry",
					Type:     "retry",
					Target:   TargetRetryEvaluation,
					Priority: domain.PriorityMedium,
					Title:    "Passed, but it was close",
					Message:  "You passed with a narrow margin. Retaking the evaluation will solidify the material.",
				},
				Condition: domain.CondRepeatedEvalOnce,
				True: &domain.Node{
					Action: &domain.RecommendationAction{
						ID:       "review_strategies",
						Type:     "study_tip",
						Target:   TargetNextCoreLesson,
						Priority: domain.PriorityLow,
						Title:    "Change your review strategy",
						Message:  "Repeated close passes suggest rereading the core lessons with fresh eyes.",
					},
				},
				// No false child: a single close pass ends the walk here.
			},
			False: &domain.Node{
				Action: &domain.RecommendationAction{
					ID:       "advance_next",
					Type:     "advance",
					Target:   TargetNextCoreLesson,
					Priority: domain.PriorityMedium,
					Title:    "Move on",
					Message:  "Solid pass. You are ready for the next lesson.",
				},
			},
		},
		False: &domain.Node{
			Condition: domain.CondFailedEvalTwice,
			True: &domain.Node{
				Action: &domain.RecommendationAction{
					ID:       "remedial_lesson",
					Type:     "remedial",
					Target:   TargetFirstRemedialLesson,
					Priority: domain.PriorityHigh,
					Title:    "Take the remedial lesson",
					Message:  "Two unsuccessful attempts. The remedial lesson covers the gaps step by step.",
				},
				Condition: domain.CondCompletedIntro60,
				True: &domain.Node{
					Action: &domain.RecommendationAction{
						ID:       "module_resources",
						Type:     "resources",
						Target:   TargetModuleResources,
						Priority: domain.PriorityMedium,
						Title:    "Extra study material",
						Message:  "These course resources can help before your next attempt.",
					},
				},
			},
			False: &domain.Node{
				Action: &domain.RecommendationAction{
					ID:       "retry_evaluation",
					Type:     "retry",
					Target:   TargetRetryEvaluation,
					Priority: domain.PriorityMedium,
					Title:    "Give it another try",
					Message:  "Review your answers and retake the evaluation when you are ready.",
				},
			},
		},
	}
}
