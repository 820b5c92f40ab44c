package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestFiberMiddleware_RecordsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/boom/:id", func(c *fiber.Ctx) error {
		c.Locals("userID", "user-1")
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /boom/42", span.Name())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.String("http.route", "/boom/:id"))
	assert.Contains(t, span.Attributes(), attribute.String("enduser.id", "user-1"))
}

func TestAddSpanEvent_ClientErrorKeepsOkStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Post("/sets", func(c *fiber.Ctx) error {
		AddSpanEvent(c, "personal_record.detected", attribute.String("exercise_id", "ex-1"))
		return c.SendStatus(fiber.StatusConflict)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/sets", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "personal_record.detected", spans[0].Events()[0].Name)
}

func TestInitialize_Disabled(t *testing.T) {
	p, err := Initialize(t.Context(), Config{Enabled: false})
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Shutdown(t.Context()))
}
