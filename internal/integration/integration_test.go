package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/domain"
	"forklift-training-service/internal/infra/memory"
	"forklift-training-service/internal/infra/postgres"
	pgmigrations "forklift-training-service/internal/infra/postgres/migrations"
	infraredis "forklift-training-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestQuizAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := zap.NewNop()
	questions := infraredis.NewQuestionCache(redisClient, store, 5*time.Minute, log)
	auth := app.NewAuthServiceWithCost(store, bcrypt.MinCost, log)
	if err := app.Seed(ctx, store, questions, auth, log); err != nil {
		t.Fatalf("seed: %v", err)
	}
	sessions := app.NewSessionService(infraredis.NewSessionStore(redisClient, 5*time.Minute), auth, log)
	scores := app.NewScoreService(store, log)
	quiz := app.NewQuizService(sessions, questions, scores, log, app.WithShuffleSeed(3))
	admin := app.NewAdminService(store, questions, store, memory.NewStore(), auth, log)

	if _, err := auth.Register(ctx, "op1", "secret", "Op One"); err != nil {
		t.Fatalf("register: %v", err)
	}
	view, err := sessions.Open(ctx, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := sessions.Login(ctx, view.ID, "op1", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	answers := make(map[string]int)
	for _, q := range app.DefaultQuestions() {
		answers[q.Question] = q.Answer
	}
	state, err := quiz.StartOrResume(ctx, view.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; state.Status == app.StatusInProgress; i++ {
		choice, ok := answers[state.Question.Question]
		if !ok {
			t.Fatalf("unexpected question %q", state.Question.Question)
		}
		if i == 0 {
			choice = (choice + 1) % domain.OptionCount
		}
		if _, _, err := quiz.SubmitAnswer(ctx, view.ID, choice); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if state, err = quiz.Advance(ctx, view.ID); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if state.Result == nil || state.Result.Score != 2 || state.Result.MaxScore != 3 || state.Result.Tier != domain.TierPartial {
		t.Fatalf("unexpected result %+v", state.Result)
	}

	history, err := scores.GetHistory(ctx, "op1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Records) != 1 || history.Records[0].Score != 2 || history.Summary.Attempts != 1 {
		t.Fatalf("expected one stored record, got %+v", history)
	}

	if err := admin.RemoveUser(ctx, "admin"); !errors.Is(err, domain.ErrLastAdminRemoval) {
		t.Fatalf("expected last admin guard, got %v", err)
	}

	// an admin edit must reach the next attempt through the cache
	if _, err := admin.AddQuestion(ctx, domain.Question{
		Question:    "Where should the forks be while travelling?",
		Options:     []string{"Raised high", "Low and tilted back", "Level at eye height", "Anywhere"},
		Answer:      1,
		Explanation: "Keep forks low with the mast tilted back for stability.",
	}); err != nil {
		t.Fatalf("add question: %v", err)
	}
	state, err = quiz.Restart(ctx, view.ID)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if state.Total != len(app.DefaultQuestions())+1 {
		t.Fatalf("expected %d questions after edit, got %d", len(app.DefaultQuestions())+1, state.Total)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "training", "POSTGRES_PASSWORD": "trainingpass", "POSTGRES_DB": "training"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://training:trainingpass@%s:%s/training?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
