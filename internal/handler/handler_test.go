package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

// asUser stands in for token verification
func asUser(c *fiber.Ctx) error {
	c.Locals(middleware.UserIDKey, testUser)
	return c.Next()
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(asUser)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"exercise not found", fmt.Errorf("lookup: %w", domain.ErrExerciseNotFound), fiber.StatusNotFound, "NOT_FOUND"},
		{"forbidden", domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
		{"email taken", domain.ErrEmailTaken, fiber.StatusConflict, "CONFLICT"},
		{"duplicate exercise", domain.ErrDuplicateExercise, fiber.StatusConflict, "CONFLICT"},
		{"bad credentials", domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"bad refresh", domain.ErrInvalidRefreshToken, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"busy", domain.ErrLockNotAcquired, fiber.StatusServiceUnavailable, "BUSY"},
		{"invalid", fmt.Errorf("%w: reps must be positive", domain.ErrInvalidInput), fiber.StatusBadRequest, "INVALID_INPUT"},
		{"unknown", errors.New("mongo exploded"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, tt.err) })

			resp, body := doJSON(t, app, "GET", "/", nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, body["code"])
			if tt.wantStatus == fiber.StatusInternalServerError {
				assert.Equal(t, "internal server error", body["message"])
			}
		})
	}
}

func TestWriteError_TypedErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/profile", func(c *fiber.Ctx) error {
		return writeError(c, &domain.ProfileIncompleteError{Missing: []string{domain.FieldWeightKg, domain.FieldGender}})
	})
	app.Get("/budget", func(c *fiber.Ctx) error {
		return writeError(c, fmt.Errorf("reserve: %w", &domain.TokenBudgetError{Used: 9000, Limit: 10000}))
	})

	resp, body := doJSON(t, app, "GET", "/profile", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INCOMPLETE_PROFILE", body["code"])
	assert.Equal(t, []interface{}{"weight_kg", "gender"}, body["missing_fields"])

	resp, body = doJSON(t, app, "GET", "/budget", nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TOKEN_BUDGET_EXCEEDED", body["code"])
	assert.Equal(t, float64(9000), body["used"])
	assert.Equal(t, float64(10000), body["limit"])
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2026-03-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-28T00:00:00Z", day.Format("2006-01-02T15:04:05Z07:00"))

	day, err = parseDay("2026-03-28T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-29", day.Format(dayLayout))

	_, err = parseDay("28/03/2026")
	assert.Error(t, err)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	users := testutil.NewUserRepo()
	profiles := testutil.NewProfileRepo()
	h := NewUserHandler(service.NewUserService(users, profiles, testutil.NewMemoryCache()))

	app := newTestApp()
	app.Put("/me/profile", h.UpdateProfile)

	resp, body := doJSON(t, app, "PUT", "/me/profile", map[string]interface{}{
		"date_of_birth":  "1990-01-15",
		"weight_kg":      82.5,
		"activity_level": "moderate",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 82.5, body["weight_kg"])
	assert.Equal(t, "1990-01-15T00:00:00Z", body["date_of_birth"])

	resp, _ = doJSON(t, app, "PUT", "/me/profile", map[string]interface{}{"date_of_birth": "15/01/1990"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "PUT", "/me/profile", map[string]interface{}{"activity_level": "couch"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRecoveryHandler_CheckinDateAliases(t *testing.T) {
	repo := testutil.NewRecoveryRepo()
	h := NewRecoveryHandler(service.NewRecoveryService(repo, testutil.NewDailyVolumeRepo()))

	app := newTestApp()
	app.Post("/checkin", h.Checkin)

	resp, body := doJSON(t, app, "POST", "/checkin", map[string]interface{}{
		"log_date":      "2026-03-20",
		"sleep_hours":   8,
		"sleep_quality": 5,
		"fatigue_level": 1,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2026-03-20T00:00:00Z", body["date"])
	assert.Equal(t, float64(100), body["recovery_score"])

	resp, body = doJSON(t, app, "POST", "/checkin", map[string]interface{}{
		"date":     "2026-03-21",
		"soreness": []map[string]interface{}{{"muscle_group": "quads", "level": 3}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2026-03-21T00:00:00Z", body["date"])
	assert.Len(t, body["soreness"], 1)

	resp, _ = doJSON(t, app, "POST", "/checkin", map[string]interface{}{"date": "yesterday"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNutritionHandler_TDEEIncompleteProfile(t *testing.T) {
	profiles := testutil.NewProfileRepo()
	nutrition := service.NewNutritionService(profiles, testutil.NewFoodRepo(), testutil.NewNutritionLogRepo(), testutil.NewMemoryCache())
	h := NewNutritionHandler(nutrition, service.NewHydrationService(testutil.NewHydrationRepo()))

	app := newTestApp()
	app.Get("/tdee", h.TDEE)
	app.Get("/hydration/:date", h.GetHydration)
	app.Post("/hydration/:date/entries", h.AddHydration)

	resp, body := doJSON(t, app, "GET", "/tdee", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []interface{}{"weight_kg", "height_cm", "date_of_birth", "gender", "activity_level"}, body["missing_fields"])

	resp, body = doJSON(t, app, "POST", "/hydration/2026-03-28/entries", map[string]int{"amount_ml": 400})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(400), body["total_ml"])

	resp, body = doJSON(t, app, "GET", "/hydration/2026-03-28", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2500), body["target_ml"])

	resp, _ = doJSON(t, app, "GET", "/hydration/not-a-day", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func multipartPhoto(t *testing.T, data []byte, angle string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="photo"; filename="front.bin"`)
	hdr.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	if angle != "" {
		require.NoError(t, w.WriteField("angle", angle))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestBodyStatsHandler_UploadPhoto(t *testing.T) {
	files := testutil.NewMemoryFileStore()
	svc := service.NewBodyStatsService(
		testutil.NewMeasurementRepo(), testutil.NewPhotoRepo(), testutil.NewProfileRepo(),
		testutil.NewPRRepo(), files, testutil.NewMemoryCache(),
	)
	h := NewBodyStatsHandler(svc, 1)

	app := newTestApp()
	app.Post("/photos", h.UploadPhoto)
	app.Get("/photos", h.ListPhotos)

	upload := func(data []byte, angle string) (*http.Response, map[string]interface{}) {
		body, contentType := multipartPhoto(t, data, angle)
		req := httptest.NewRequest("POST", "/photos", body)
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req)
		require.NoError(t, err)
		var out map[string]interface{}
		raw, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(raw, &out)
		return resp, out
	}

	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

	t.Run("sniffs the real type", func(t *testing.T) {
		resp, body := upload(png, "side")
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, "side", body["angle"])
		url, _ := body["s3_url"].(string)
		assert.True(t, strings.HasPrefix(url, "memory://progress/"+testUser+"/"))
		assert.True(t, strings.HasSuffix(url, ".png"))
		assert.Len(t, files.Objects, 1)
	})

	t.Run("rejects non images", func(t *testing.T) {
		resp, body := upload([]byte("definitely not an image file"), "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", body["code"])
	})

	t.Run("rejects oversize", func(t *testing.T) {
		big := append(append([]byte{}, png...), make([]byte, 1024*1024)...)
		resp, _ := upload(big, "front")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/photos", strings.NewReader(""))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/photos", nil))
	require.NoError(t, err)
	var photos []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&photos))
	assert.Len(t, photos, 1)
}

// scriptedChat streams fixed chunks or fails
type scriptedChat struct {
	chunks   []string
	failWith error
}

func (s *scriptedChat) Complete(context.Context, []service.ChatMessage) (string, int64, error) {
	if s.failWith != nil {
		return "", 0, s.failWith
	}
	return strings.Join(s.chunks, ""), 150, nil
}

func (s *scriptedChat) Stream(_ context.Context, _ []service.ChatMessage, onChunk func(string) error) error {
	for _, c := range s.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return s.failWith
}

func newAIApp(chat service.ChatClient, limit int64) *fiber.App {
	recovery := service.NewRecoveryService(testutil.NewRecoveryRepo(), testutil.NewDailyVolumeRepo())
	svc := service.NewAIService(chat, testutil.NewMemoryTokenBudget(limit), testutil.NewProfileRepo(), recovery)
	h := NewAIHandler(svc)

	app := newTestApp()
	app.Post("/workout-plan", h.WorkoutPlan)
	app.Post("/recovery-advice", h.RecoveryAdvice)
	return app
}

func readSSE(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var frames []map[string]interface{}
	for _, block := range strings.Split(string(raw), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		require.True(t, strings.HasPrefix(block, "data: "), "unexpected frame %q", block)
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(block, "data: ")), &frame))
		frames = append(frames, frame)
	}
	return frames
}

func TestAIHandler_WorkoutPlanStream(t *testing.T) {
	app := newAIApp(&scriptedChat{chunks: []string{"Day 1: squat", "\nDay 2: bench"}}, 100_000)

	req := httptest.NewRequest("POST", "/workout-plan", strings.NewReader(`{"days_per_week":3,"goal":"strength"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	frames := readSSE(t, resp)
	require.Len(t, frames, 3)
	assert.Equal(t, map[string]interface{}{"type": "content", "content": "Day 1: squat"}, frames[0])
	assert.Equal(t, map[string]interface{}{"type": "content", "content": "\nDay 2: bench"}, frames[1])
	assert.Equal(t, map[string]interface{}{"type": "done"}, frames[2])
}

func TestAIHandler_StreamFailure(t *testing.T) {
	app := newAIApp(&scriptedChat{chunks: []string{"Day 1"}, failWith: errors.New("provider overloaded")}, 100_000)

	req := httptest.NewRequest("POST", "/workout-plan", strings.NewReader(`{"days_per_week":3}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	frames := readSSE(t, resp)
	require.Len(t, frames, 2)
	assert.Equal(t, "content", frames[0]["type"])
	assert.Equal(t, "error", frames[1]["type"])
	assert.Contains(t, frames[1]["message"], "provider overloaded")
}

func TestAIHandler_Refusals(t *testing.T) {
	app := newAIApp(&scriptedChat{chunks: []string{"x"}}, 1000)

	resp, body := doJSON(t, app, "POST", "/workout-plan", map[string]int{"days_per_week": 3})
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "TOKEN_BUDGET_EXCEEDED", body["code"])
	assert.Equal(t, float64(0), body["used"])
	assert.Equal(t, float64(1000), body["limit"])

	resp, body = doJSON(t, app, "POST", "/workout-plan", map[string]int{"days_per_week": 0})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

func TestAIHandler_RecoveryAdvice(t *testing.T) {
	app := newAIApp(&scriptedChat{chunks: []string{"Take a walk."}}, 100_000)

	resp, body := doJSON(t, app, "POST", "/recovery-advice", map[string]interface{}{"current_soreness": []string{"hamstrings"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Take a walk.", body["advice"])
	assert.Equal(t, float64(150), body["tokens_used"])
}
