package app

import (
	"context"
	"log"
	"strings"
	"time"

	"adaptive-eval-service/internal/domain"
)

// ResolvedRecommendation is a recommendation action after its symbolic target
// has been mapped to concrete content. ContentID is empty when no content
// link could be resolved.
type ResolvedRecommendation struct {
	ActionID    string
	Target      string
	Type        string
	Title       string
	Description string
	Priority    domain.Priority
	ContentID   string
	ContentType string
	ActionURL   string
}

// ContentResolver maps symbolic action targets to concrete lessons and
// resources. All lookups are bounded by a timeout and degrade to "no content
// link" on failure; resolution never blocks or fails the pipeline.
type ContentResolver struct {
	lessons       LessonStore
	resources     CourseResourceStore
	lookupTimeout time.Duration
}

func NewContentResolver(lessons LessonStore, resources CourseResourceStore, lookupTimeout time.Duration) *ContentResolver {
	if lookupTimeout <= 0 {
		lookupTimeout = 3 * time.Second
	}
	return &ContentResolver{lessons: lessons, resources: resources, lookupTimeout: lookupTimeout}
}

// Resolve fills in the concrete content fields for one action. Lesson-slot
// targets resolve to the first lesson of the module at the encoded level;
// MODULE_GENERAL_RESOURCES appends the course's PDF titles to the message;
// everything else passes through verbatim.
func (r *ContentResolver) Resolve(ctx context.Context, action domain.RecommendationAction, moduleID, courseID string) ResolvedRecommendation {
	resolved := ResolvedRecommendation{
		ActionID:    action.ID,
		Target:      action.Target,
		Type:        action.Type,
		Title:       action.Title,
		Description: action.Message,
		Priority:    action.Priority,
	}

	switch {
	case strings.Contains(action.Target, "LESSON"):
		r.resolveLesson(ctx, action, moduleID, &resolved)
	case action.Target == TargetModuleResources:
		r.resolveResources(ctx, action, courseID, &resolved)
	}
	return resolved
}

func (r *ContentResolver) resolveLesson(ctx context.Context, action domain.RecommendationAction, moduleID string, resolved *ResolvedRecommendation) {
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	lesson, err := r.lessons.FirstLessonByLevel(ctx, moduleID, lessonLevel(action.Target))
	if err != nil {
		log.Printf("resolve %s for module %s: no lesson link: %v", action.Target, moduleID, err)
		return
	}
	resolved.ContentID = lesson.ID
	resolved.ContentType = "lesson"
	resolved.ActionURL = "/lessons/" + lesson.ID
}

func (r *ContentResolver) resolveResources(ctx context.Context, action domain.RecommendationAction, courseID string, resolved *ResolvedRecommendation) {
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	resources, err := r.resources.ListResources(ctx, courseID)
	if err != nil {
		log.Printf("resolve %s for course %s: %v", action.Target, courseID, err)
		return
	}

	var titles []string
	for _, res := range resources {
		if res.ResourceType == "pdf" {
			titles = append(titles, res.Title)
		}
	}
	if len(titles) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(resolved.Description)
	sb.WriteString("\n\nAvailable material:")
	for _, title := range titles {
		sb.WriteString("\n- ")
		sb.WriteString(title)
	}
	resolved.Description = sb.String()
}

// lessonLevel decodes the target level keyword embedded in a lesson-slot
// target string.
func lessonLevel(target string) domain.TargetLevel {
	switch {
	case strings.Contains(target, "REMEDIAL"):
		return domain.LevelRemedial
	case strings.Contains(target, "ADVANCED"):
		return domain.LevelAdvanced
	default:
		return domain.LevelCore
	}
}
