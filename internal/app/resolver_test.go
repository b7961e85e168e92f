package app_test

import (
	"context"
	"strings"
	"testing"

	"adaptive-eval-service/internal/app"
	"adaptive-eval-service/internal/domain"
	"adaptive-eval-service/internal/infra/memory"
)

func testLessons() []domain.Lesson {
	return []domain.Lesson{
		{ID: "lesson-adv", ModuleID: "module-1", Title: "Deep dive", TargetLevel: domain.LevelAdvanced, OrderIndex: 1},
		{ID: "lesson-rem-2", ModuleID: "module-1", Title: "Back to basics II", TargetLevel: domain.LevelRemedial, OrderIndex: 2},
		{ID: "lesson-rem-1", ModuleID: "module-1", Title: "Back to basics I", TargetLevel: domain.LevelRemedial, OrderIndex: 1},
		{ID: "lesson-core", ModuleID: "module-1", Title: "Next up", TargetLevel: domain.LevelCore, OrderIndex: 3},
		{ID: "other-module", ModuleID: "module-2", TargetLevel: domain.LevelRemedial, OrderIndex: 0},
	}
}

func newResolver(resources []domain.CourseResource) *app.ContentResolver {
	return app.NewContentResolver(memory.NewLessonStore(testLessons()), memory.NewCourseResourceStore(resources), 0)
}

func TestResolveLessonSlots(t *testing.T) {
	resolver := newResolver(nil)
	ctx := context.Background()

	cases := []struct {
		target string
		wantID string
	}{
		{app.TargetFirstRemedialLesson, "lesson-rem-1"},
		{app.TargetFirstAdvancedLesson, "lesson-adv"},
		{app.TargetNextCoreLesson, "lesson-core"},
	}
	for _, tc := range cases {
		resolved := resolver.Resolve(ctx, domain.RecommendationAction{ID: "a", Target: tc.target}, "module-1", "course-1")
		if resolved.ContentID != tc.wantID {
			t.Fatalf("%s: expected lesson %s, got %q", tc.target, tc.wantID, resolved.ContentID)
		}
		if resolved.ContentType != "lesson" {
			t.Fatalf("%s: expected content type lesson, got %q", tc.target, resolved.ContentType)
		}
		if resolved.ActionURL != "/lessons/"+tc.wantID {
			t.Fatalf("%s: unexpected action URL %q", tc.target, resolved.ActionURL)
		}
	}
}

func TestResolveLessonMissDegradesToNoLink(t *testing.T) {
	resolver := newResolver(nil)

	resolved := resolver.Resolve(context.Background(), domain.RecommendationAction{
		ID:     "remedial_lesson",
		Target: app.TargetFirstRemedialLesson,
		Title:  "Review the basics",
	}, "module-without-lessons", "course-1")

	if resolved.ContentID != "" || resolved.ActionURL != "" {
		t.Fatalf("expected no content link, got %+v", resolved)
	}
	if resolved.Title != "Review the basics" {
		t.Fatalf("action fields must survive a failed lookup, got %+v", resolved)
	}
}

func TestResolveModuleResourcesAppendsPDFTitles(t *testing.T) {
	resolver := newResolver([]domain.CourseResource{
		{ID: "r1", CourseID: "course-1", Title: "Course handbook", ResourceType: "pdf"},
		{ID: "r2", CourseID: "course-1", Title: "Intro video", ResourceType: "video"},
		{ID: "r3", CourseID: "course-1", Title: "Cheat sheet", ResourceType: "pdf"},
	})

	resolved := resolver.Resolve(context.Background(), domain.RecommendationAction{
		ID:      "module_resources",
		Target:  app.TargetModuleResources,
		Message: "Extra material can help.",
	}, "module-1", "course-1")

	want := "Extra material can help.\n\nAvailable material:\n- Course handbook\n- Cheat sheet"
	if resolved.Description != want {
		t.Fatalf("expected %q, got %q", want, resolved.Description)
	}
	if strings.Contains(resolved.Description, "Intro video") {
		t.Fatalf("non-PDF resources must not be listed")
	}
}

func TestResolveModuleResourcesWithoutPDFs(t *testing.T) {
	resolver := newResolver([]domain.CourseResource{
		{ID: "r1", CourseID: "course-1", Title: "Intro video", ResourceType: "video"},
	})

	resolved := resolver.Resolve(context.Background(), domain.RecommendationAction{
		ID:      "module_resources",
		Target:  app.TargetModuleResources,
		Message: "Extra material can help.",
	}, "module-1", "course-1")

	if resolved.Description != "Extra material can help." {
		t.Fatalf("expected the message untouched, got %q", resolved.Description)
	}
}

func TestResolvePassthroughTargets(t *testing.T) {
	resolver := newResolver(nil)

	action := domain.RecommendationAction{
		ID:       "suggest_retry",
		Target:   app.TargetRetryEvaluation,
		Type:     "evaluation",
		Title:    "Try again",
		Message:  "One more run could raise your score.",
		Priority: domain.PriorityMedium,
	}
	resolved := resolver.Resolve(context.Background(), action, "module-1", "course-1")

	if resolved.ActionID != action.ID || resolved.Target != action.Target ||
		resolved.Title != action.Title || resolved.Description != action.Message ||
		resolved.Priority != action.Priority {
		t.Fatalf("expected verbatim passthrough, got %+v", resolved)
	}
	if resolved.ContentID != "" || resolved.ContentType != "" || resolved.ActionURL != "" {
		t.Fatalf("passthrough targets must not gain content links, got %+v", resolved)
	}
}
