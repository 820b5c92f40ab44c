package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cannedChat struct{ reply string }

func (c cannedChat) Complete(context.Context, []service.ChatMessage) (string, int64, error) {
	return c.reply, 42, nil
}

func (c cannedChat) Stream(_ context.Context, _ []service.ChatMessage, onChunk func(string) error) error {
	return onChunk(c.reply)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{MaxUploadSizeMB: 5, Environment: "test"},
		JWT: config.JWTConfig{
			Secret:             "server-test-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		AI:          config.AIConfig{DailyTokenBudget: 100_000},
		Locks:       config.LockConfig{PRLockTTL: 2 * time.Second, PRLockWait: time.Second},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
	}
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func memoryRepositories(exercises ...*domain.Exercise) *Repositories {
	return &Repositories{
		Users:           testutil.NewUserRepo(),
		Profiles:        testutil.NewProfileRepo(),
		RefreshTokens:   testutil.NewRefreshTokenRepo(),
		Exercises:       testutil.NewExerciseRepo(exercises...),
		Plans:           testutil.NewPlanRepo(),
		Sessions:        testutil.NewSessionRepo(),
		Sets:            testutil.NewSetRepo(),
		DailyVolumes:    testutil.NewDailyVolumeRepo(),
		PersonalRecords: testutil.NewPRRepo(),
		Recovery:        testutil.NewRecoveryRepo(),
		Foods:           testutil.NewFoodRepo(),
		NutritionLogs:   testutil.NewNutritionLogRepo(),
		Hydration:       testutil.NewHydrationRepo(),
		Measurements:    testutil.NewMeasurementRepo(),
		Photos:          testutil.NewPhotoRepo(),
		Files:           testutil.NewMemoryFileStore(),
	}
}

// client drives the app the way a mobile client would
type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c *client) do(method, path, body string, headers map[string]string) (*http.Response, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, raw
}

func (c *client) decode(raw []byte, dest interface{}) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(raw, dest), string(raw))
}

// signUp registers and logs in, leaving the access token on the client
func (c *client) signUp(email string) service.TokenPair {
	c.t.Helper()
	return c.signUpAs(email, "lifter")
}

func (c *client) signUpAs(email, username string) service.TokenPair {
	c.t.Helper()
	resp, raw := c.do("POST", "/api/v1/auth/register",
		`{"email":"`+email+`","username":"`+username+`","password":"s3cret-pass"}`, nil)
	require.Equal(c.t, fiber.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = c.do("POST", "/api/v1/auth/login", `{"email":"`+email+`","password":"s3cret-pass"}`, nil)
	require.Equal(c.t, fiber.StatusOK, resp.StatusCode, string(raw))

	var pair service.TokenPair
	c.decode(raw, &pair)
	require.NotEmpty(c.t, pair.AccessToken)
	c.token = pair.AccessToken
	return pair
}

func TestServer_HealthAndAuthGuard(t *testing.T) {
	app := NewAppWithRepositories(testConfig(), memoryRepositories(), newRedis(t), cannedChat{})
	c := &client{t: t, app: app}

	resp, raw := c.do("GET", "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"healthy"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, raw = c.do("GET", "/api/v1/users/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(raw), "UNAUTHORIZED")

	c.token = "not-a-jwt"
	resp, _ = c.do("GET", "/api/v1/workouts/sessions", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	c.token = ""
	resp, raw = c.do("GET", "/api/v1/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(raw), "NOT_FOUND")
}

func TestServer_AccountLifecycle(t *testing.T) {
	app := NewAppWithRepositories(testConfig(), memoryRepositories(), newRedis(t), cannedChat{})
	c := &client{t: t, app: app}
	pair := c.signUp("Lifter@Example.com")

	resp, raw := c.do("GET", "/api/v1/users/me", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "lifter@example.com")

	anon := &client{t: t, app: app}
	resp, _ = anon.do("POST", "/api/v1/auth/register",
		`{"email":"lifter@example.com","username":"other","password":"s3cret-pass"}`, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = anon.do("POST", "/api/v1/auth/login", `{"email":"lifter@example.com","password":"wrong-pass"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Refresh rotates: the old refresh token stops working
	resp, raw = anon.do("POST", "/api/v1/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var rotated service.TokenPair
	anon.decode(raw, &rotated)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	resp, _ = anon.do("POST", "/api/v1/auth/refresh", `{"refresh_token":"`+pair.RefreshToken+`"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = anon.do("POST", "/api/v1/auth/logout", `{"refresh_token":"`+rotated.RefreshToken+`"}`, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = anon.do("POST", "/api/v1/auth/refresh", `{"refresh_token":"`+rotated.RefreshToken+`"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServer_WorkoutFlow(t *testing.T) {
	bench := &domain.Exercise{ID: "ex-bench", Name: "Barbell Bench Press", Category: "strength", MuscleGroup: "Chest"}
	app := NewAppWithRepositories(testConfig(), memoryRepositories(bench), newRedis(t), cannedChat{})
	c := &client{t: t, app: app}
	c.signUp("flow@example.com")

	resp, raw := c.do("POST", "/api/v1/workouts/sessions", `{"name":"Push Day"}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var session domain.WorkoutSession
	c.decode(raw, &session)

	setPath := "/api/v1/workouts/sessions/" + session.ID + "/sets"
	setBody := `{"exercise_id":"ex-bench","set_number":1,"weight_kg":100,"reps":8}`
	retry := map[string]string{"X-Correlation-ID": "set-1-attempt"}

	resp, raw = c.do("POST", setPath, setBody, retry)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var first domain.SessionSet
	c.decode(raw, &first)
	assert.True(t, first.IsPR)

	resp, raw = c.do("POST", setPath, setBody, retry)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Idempotent-Replay"))
	var replayed domain.SessionSet
	c.decode(raw, &replayed)
	assert.Equal(t, first.ID, replayed.ID)

	resp, raw = c.do("GET", "/api/v1/workouts/sessions/"+session.ID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	c.decode(raw, &session)
	assert.Len(t, session.Sets, 1)

	resp, raw = c.do("PUT", "/api/v1/workouts/sessions/"+session.ID+"/complete", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	c.decode(raw, &session)
	require.NotNil(t, session.TotalVolumeKg)
	assert.Equal(t, 800.0, *session.TotalVolumeKg)

	resp, raw = c.do("POST", setPath, `{"exercise_id":"ex-bench","set_number":2,"weight_kg":110,"reps":3}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "INVALID_INPUT")

	resp, raw = c.do("GET", "/api/v1/personal-records", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var prs []domain.PersonalRecord
	c.decode(raw, &prs)
	assert.Len(t, prs, 2)

	resp, raw = c.do("GET", "/api/v1/reports/weekly", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report domain.Report
	c.decode(raw, &report)
	assert.Equal(t, 1, report.SessionsCompleted)
	assert.Equal(t, 800.0, report.TotalVolumeKg)
	assert.Equal(t, 2, report.PersonalRecords)
}

func TestServer_PlanUpdate(t *testing.T) {
	app := NewAppWithRepositories(testConfig(), memoryRepositories(), newRedis(t), cannedChat{})
	c := &client{t: t, app: app}
	c.signUp("plans@example.com")

	resp, raw := c.do("POST", "/api/v1/workouts/plans", `{"name":"Upper/Lower","goal":"strength"}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var plan domain.WorkoutPlan
	c.decode(raw, &plan)

	planPath := "/api/v1/workouts/plans/" + plan.ID
	resp, raw = c.do("PUT", planPath, `{"is_active":false,"days":[{"day_number":1,"name":"Upper"}]}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var updated domain.WorkoutPlan
	c.decode(raw, &updated)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Upper/Lower", updated.Name)
	assert.Equal(t, "strength", updated.Goal)
	require.Len(t, updated.Days, 1)
	assert.Equal(t, "Upper", updated.Days[0].Name)

	resp, _ = c.do("PUT", planPath, `{"name":""}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = c.do("PUT", "/api/v1/workouts/plans/missing", `{"name":"PPL"}`, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	other := &client{t: t, app: app}
	other.signUpAs("someone@example.com", "spotter")
	resp, _ = other.do("PUT", planPath, `{"name":"PPL"}`, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestServer_RecoveryAdvice(t *testing.T) {
	app := NewAppWithRepositories(testConfig(), memoryRepositories(), newRedis(t), cannedChat{reply: "Rest today."})
	c := &client{t: t, app: app}
	c.signUp("rest@example.com")

	resp, raw := c.do("POST", "/api/v1/recovery/checkin", `{"sleep_hours":6,"sleep_quality":3,"fatigue_level":3}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	resp, raw = c.do("POST", "/api/v1/ai/recovery-advice", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "Rest today.")
}

func setupMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Skipf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mc.Disconnect(context.Background()) })
	return mc.Database("fitcoach_e2e")
}

func TestServer_MongoEndToEnd(t *testing.T) {
	db := setupMongo(t)
	cfg := testConfig()

	app := NewApp(AppDependencies{
		Config:      cfg,
		MongoDB:     db,
		RedisClient: newRedis(t),
		FileStore:   testutil.NewMemoryFileStore(),
		ChatClient:  cannedChat{reply: "ok"},
	})
	c := &client{t: t, app: app}
	c.signUp("e2e@example.com")

	resp, raw := c.do("POST", "/api/v1/workouts/exercises", `{"name":"Goblet Squat","category":"strength","muscle_group":"Legs"}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var exercise domain.Exercise
	c.decode(raw, &exercise)

	resp, raw = c.do("POST", "/api/v1/workouts/sessions", `{"name":"Legs"}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var session domain.WorkoutSession
	c.decode(raw, &session)

	for i, weight := range []string{"20", "24"} {
		body := `{"exercise_id":"` + exercise.ID + `","set_number":` + strconv.Itoa(i+1) + `,"weight_kg":` + weight + `,"reps":10}`
		resp, raw = c.do("POST", "/api/v1/workouts/sessions/"+session.ID+"/sets", body, nil)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	}

	resp, raw = c.do("POST", "/api/v1/workouts/sessions/"+session.ID+"/complete", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	c.decode(raw, &session)
	require.NotNil(t, session.TotalVolumeKg)
	assert.Equal(t, 440.0, *session.TotalVolumeKg)

	// Completing twice is rejected
	resp, _ = c.do("POST", "/api/v1/workouts/sessions/"+session.ID+"/complete", "", nil)
	assert.GreaterOrEqual(t, resp.StatusCode, 400)

	resp, raw = c.do("POST", "/api/v1/body-stats/measurements", `{"weight_kg":82.5,"body_fat_pct":18}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = c.do("GET", "/api/v1/body-stats/dashboard", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var dashboard domain.BodyStatsDashboard
	c.decode(raw, &dashboard)
	require.NotNil(t, dashboard.LatestWeightKg)
	assert.Equal(t, 82.5, *dashboard.LatestWeightKg)

	resp, raw = c.do("POST", "/api/v1/hydration/today/entries", `{"amount_ml":500}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"total_ml":500`)
}
