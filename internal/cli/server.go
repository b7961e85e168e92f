package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"adaptive-eval-service/internal/app"
	"adaptive-eval-service/internal/config"
	"adaptive-eval-service/internal/domain"
	"adaptive-eval-service/internal/infra/memory"
	pgstore "adaptive-eval-service/internal/infra/postgres"
	redisstore "adaptive-eval-service/internal/infra/redis"
	"adaptive-eval-service/internal/queue"
	transport "adaptive-eval-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the evaluation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Evaluation content: loader from Postgres when configured, else a static
	// sample set; cached in Redis when available, else in process memory.
	cacheTTL := config.TTLDuration(cfg.Evaluation.CacheTTL, 10*time.Minute)
	var evaluations app.EvaluationStore
	if pool != nil && redisClient != nil {
		evaluations = redisstore.NewEvaluationCache(redisClient, pgstore.NewEvaluationLoader(pool), cacheTTL)
	} else if pool != nil {
		evaluations = memory.NewEvaluationCache(pgstore.NewEvaluationLoader(pool), cacheTTL)
	} else {
		evaluations = memory.NewEvaluationCache(memory.NewStaticEvaluationLoader(sampleEvaluations()), cacheTTL)
	}

	var (
		attempts        app.AttemptStore
		moduleProgress  app.ModuleProgressStore
		lessonProgress  app.LessonProgressStore
		lessons         app.LessonStore
		resources       app.CourseResourceStore
		recommendations app.RecommendationStore
	)
	if pool != nil {
		attempts = pgstore.NewAttemptStore(pool)
		moduleProgress = pgstore.NewModuleProgressStore(pool)
		lessonProgress = pgstore.NewLessonProgressStore(pool)
		lessons = pgstore.NewLessonStore(pool)
		resources = pgstore.NewCourseResourceStore(pool)
		recommendations = pgstore.NewRecommendationStore(pool)
	} else {
		attempts = memory.NewAttemptStore()
		moduleProgress = memory.NewModuleProgressStore()
		lessonProgress = memory.NewLessonProgressStore()
		lessons = memory.NewLessonStore(sampleLessons())
		resources = memory.NewCourseResourceStore(sampleResources())
		recommendations = memory.NewRecommendationStore()
	}

	hub := transport.NewFeedHub()
	engine := app.NewDecisionEngine(app.NewPerformanceTree(), app.NewEvaluationTree())
	builder := app.NewContextBuilder(evaluations, attempts)
	lookupTimeout := config.TTLDuration(cfg.Resolver.LookupTimeout, 3*time.Second)
	resolver := app.NewContentResolver(lessons, resources, lookupTimeout)
	persister := app.NewRecommendationPersister(recommendations)
	pipeline := app.NewRecommendationPipeline(builder, engine, resolver, persister, moduleProgress, lessonProgress, hub)

	var jobQueue app.JobQueue
	if cfg.Rabbit.URL != "" {
		rq, err := queue.NewRabbitQueue(cfg.Rabbit.URL, pipeline.Run, cfg.Rabbit.Workers)
		if err != nil {
			return err
		}
		if err := rq.Start(ctx); err != nil {
			return err
		}
		defer rq.Close()
		jobQueue = rq
	} else {
		mq := queue.NewMemoryQueue(pipeline.Run, 64)
		defer mq.Close()
		jobQueue = mq
	}

	grader := app.NewAttemptGrader(evaluations, attempts, moduleProgress, lessonProgress, jobQueue)
	handler := transport.NewHandler(grader, recommendations, engine)
	feed := transport.NewFeedHandler(hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws", feed.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting evaluation service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleEvaluations provides minimal evaluation data for running without
// Postgres.
func sampleEvaluations() map[string]domain.Evaluation {
	passing := 70
	return map[string]domain.Evaluation{
		"eval-1": {
			ID:           "eval-1",
			CourseID:     "course-1",
			ModuleID:     "module-1",
			Type:         domain.EvaluationQuiz,
			Title:        "Module 1 checkpoint",
			MaxScore:     2,
			PassingScore: &passing,
			MaxAttempts:  3,
			Questions: []domain.Question{
				{
					ID:             "q1",
					Type:           "single",
					Prompt:         "What is 2 + 2?",
					Options:        []string{"3", "4", "5"},
					CorrectOptions: []int{1},
					Points:         1,
				},
				{
					ID:             "q2",
					Type:           "multiple",
					Prompt:         "Select the even numbers",
					Options:        []string{"1", "2", "3", "4"},
					CorrectOptions: []int{1, 3},
					Points:         1,
				},
			},
		},
	}
}

func sampleLessons() []domain.Lesson {
	return []domain.Lesson{
		{ID: "lesson-1", ModuleID: "module-1", Title: "Numbers from scratch", TargetLevel: domain.LevelRemedial, OrderIndex: 1},
		{ID: "lesson-2", ModuleID: "module-1", Title: "Arithmetic basics", TargetLevel: domain.LevelCore, OrderIndex: 1},
		{ID: "lesson-3", ModuleID: "module-1", Title: "Number theory teasers", TargetLevel: domain.LevelAdvanced, OrderIndex: 1},
	}
}

func sampleResources() []domain.CourseResource {
	return []domain.CourseResource{
		{ID: "res-1", CourseID: "course-1", Title: "Arithmetic cheat sheet", ResourceType: "pdf", URL: "/files/arithmetic.pdf"},
	}
}
