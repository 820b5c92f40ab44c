package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const coachSystemPrompt = `You are FitCoach, a certified strength and conditioning coach and sports nutritionist. Give safe, evidence-based, practical guidance. Use metric units. Format answers in Markdown with clear headings. Never diagnose medical conditions; suggest seeing a professional when symptoms sound serious.`

const workoutPlanTmplStr = `Design a {{.DaysPerWeek}}-day-per-week training program.

**Athlete:**
{{- if .Age}}
- Age: {{.Age}}{{end}}
- Fitness level: {{.FitnessLevel}}
{{- if .ExperienceYears}}
- Training experience: {{.ExperienceYears}} years{{end}}
{{- if .WeightKg}}
- Body weight: {{.WeightKg}} kg{{end}}
{{- if .HeightCm}}
- Height: {{.HeightCm}} cm{{end}}
- Goal: {{.Goal}}
- Equipment: {{.Equipment}}
{{- if .Notes}}
- Notes: {{.Notes}}{{end}}

For each day list the exercises with sets, reps, rest and one coaching cue. Finish with a short progression plan for the next 4 weeks.`

const nutritionPlanTmplStr = `Create a one-day meal plan with {{.MealsPerDay}} meals.

**Client:**
{{- if .WeightKg}}
- Weight: {{.WeightKg}} kg{{end}}
{{- if .HeightCm}}
- Height: {{.HeightCm}} cm{{end}}
{{- if .Age}}
- Age: {{.Age}}{{end}}
- Goal: {{.Goal}}
- Activity level: {{.ActivityLevel}}
- Dietary restrictions: {{.Restrictions}}
{{- if .TDEE}}

**Energy targets:**
- BMR: {{printf "%.0f" .TDEE.BMR}} kcal
- TDEE: {{printf "%.0f" .TDEE.TDEE}} kcal
- Daily calorie target: {{printf "%.0f" .TDEE.CalorieTarget}} kcal{{end}}
{{- if .Notes}}

Notes: {{.Notes}}{{end}}

For each meal give foods with gram amounts, calories and protein/carbs/fat. End with the day's totals and a short grocery list.`

const recoveryAdviceTmplStr = `Give recovery advice for today.
{{- if .LatestScore}}

Latest recovery score: {{.LatestScore}}/100{{end}}
{{- if .SleepHours}}
Sleep last night: {{.SleepHours}} hours{{end}}
Recent workouts: {{.Workouts}}
Current soreness: {{.Soreness}}
{{- if .Notes}}
Notes: {{.Notes}}{{end}}

Keep it under 250 words: say whether to train, rest or do active recovery, then give 3-5 concrete actions.`

var (
	workoutPlanTmpl    = template.Must(template.New("workout_plan").Parse(workoutPlanTmplStr))
	nutritionPlanTmpl  = template.Must(template.New("nutrition_plan").Parse(nutritionPlanTmplStr))
	recoveryAdviceTmpl = template.Must(template.New("recovery_advice").Parse(recoveryAdviceTmplStr))
)

// StreamFunc runs a prepared generation, passing text to onChunk as it arrives
type StreamFunc func(ctx context.Context, onChunk func(string) error) error

// RecoveryScorer is the part of RecoveryService the coach prompts read
type RecoveryScorer interface {
	LatestScore(ctx context.Context, userID string) (*float64, error)
}

// AIService builds coaching prompts from the user's data and meters usage
type AIService struct {
	client      ChatClient
	budget      domain.TokenBudget
	profileRepo domain.ProfileRepository
	recovery    RecoveryScorer
	now         func() time.Time
}

func NewAIService(client ChatClient, budget domain.TokenBudget, profileRepo domain.ProfileRepository, recovery RecoveryScorer) *AIService {
	return &AIService{
		client:      client,
		budget:      budget,
		profileRepo: profileRepo,
		recovery:    recovery,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *AIService) reserve(ctx context.Context, userID, kind string, tokens int64) error {
	used, err := s.budget.Reserve(ctx, userID, tokens)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "kind": kind}).Warn("ai request refused")
		return err
	}
	telemetry.AITokensReserved.Add(ctx, tokens, attribute.String("kind", kind))
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"kind":       kind,
		"tokens":     tokens,
		"used_today": used,
	}).Info("ai tokens reserved")
	return nil
}

func (s *AIService) profile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.UserProfile{UserID: userID}, nil
		}
		return nil, err
	}
	return p, nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *AIService) streamer(messages []ChatMessage) StreamFunc {
	return func(ctx context.Context, onChunk func(string) error) error {
		return s.client.Stream(ctx, messages, onChunk)
	}
}

func chat(prompt string) []ChatMessage {
	return []ChatMessage{
		{Role: "system", Content: coachSystemPrompt},
		{Role: "user", Content: prompt},
	}
}

// WorkoutPlan reserves the budget and returns the stream for a training program
func (s *AIService) WorkoutPlan(ctx context.Context, userID string, req domain.WorkoutPlanRequest) (StreamFunc, error) {
	if req.DaysPerWeek < 1 || req.DaysPerWeek > 7 {
		return nil, fmt.Errorf("%w: days_per_week must be 1-7", domain.ErrInvalidInput)
	}
	if err := s.reserve(ctx, userID, "workout_plan", domain.WorkoutPlanTokenEstimate); err != nil {
		return nil, err
	}

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	equipment := req.Equipment
	if len(equipment) == 0 {
		equipment = p.AvailableEquipment
	}
	prompt, err := render(workoutPlanTmpl, map[string]interface{}{
		"DaysPerWeek":     req.DaysPerWeek,
		"Age":             intOrAge(req.Age, p.DateOfBirth, s.now()),
		"FitnessLevel":    firstNonEmpty(req.FitnessLevel, deref(p.ExperienceLevel), "beginner"),
		"ExperienceYears": req.ExperienceYears,
		"WeightKg":        p.WeightKg,
		"HeightCm":        p.HeightCm,
		"Goal":            firstNonEmpty(req.Goal, deref(p.FitnessGoal), "general fitness"),
		"Equipment":       listOrNone(equipment),
		"Notes":           req.AdditionalNotes,
	})
	if err != nil {
		return nil, err
	}
	return s.streamer(chat(prompt)), nil
}

// intOrAge prefers the requested age and falls back to the stored birth date
func intOrAge(age *int, dob *time.Time, now time.Time) *int {
	if age != nil {
		return age
	}
	if dob == nil {
		return nil
	}
	years := int(ageYears(*dob, now))
	return &years
}

// NutritionPlan reserves the budget and returns the stream for a meal plan.
// Request fields override the profile; energy targets use the profile's gender.
func (s *AIService) NutritionPlan(ctx context.Context, userID string, req domain.NutritionPlanRequest) (StreamFunc, error) {
	if req.MealsPerDay == 0 {
		req.MealsPerDay = 3
	}
	if req.MealsPerDay < 1 || req.MealsPerDay > 8 {
		return nil, fmt.Errorf("%w: meals_per_day must be 1-8", domain.ErrInvalidInput)
	}
	if err := s.reserve(ctx, userID, "nutrition_plan", domain.NutritionPlanTokenEstimate); err != nil {
		return nil, err
	}

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	weight := req.WeightKg
	if weight == nil {
		weight = p.WeightKg
	}
	height := req.HeightCm
	if height == nil {
		height = p.HeightCm
	}
	age := intOrAge(req.Age, p.DateOfBirth, s.now())
	activity := firstNonEmpty(req.ActivityLevel, deref(p.ActivityLevel), domain.ActivitySedentary)
	goal := firstNonEmpty(req.Goal, deref(p.FitnessGoal), domain.GoalMaintain)
	restrictions := req.DietaryRestrictions
	if len(restrictions) == 0 {
		restrictions = p.DietaryRestrictions
	}

	var tdee *domain.TDEEResult
	if weight != nil && height != nil && age != nil {
		bmr := CalculateBMR(*weight, *height, float64(*age), deref(p.Gender))
		total := CalculateTDEE(bmr, activity)
		tdee = &domain.TDEEResult{
			BMR:           roundTo1(bmr),
			TDEE:          roundTo1(total),
			CalorieTarget: roundTo1(CalculateCalorieTarget(total, goal)),
			ActivityLevel: activity,
			Goal:          goal,
		}
	}

	prompt, err := render(nutritionPlanTmpl, map[string]interface{}{
		"MealsPerDay":   req.MealsPerDay,
		"WeightKg":      weight,
		"HeightCm":      height,
		"Age":           age,
		"Goal":          goal,
		"ActivityLevel": activity,
		"Restrictions":  listOrNone(restrictions),
		"TDEE":          tdee,
		"Notes":         req.AdditionalNotes,
	})
	if err != nil {
		return nil, err
	}
	return s.streamer(chat(prompt)), nil
}

// RecoveryAdvice reserves the budget and returns a complete answer
func (s *AIService) RecoveryAdvice(ctx context.Context, userID string, req domain.RecoveryAdviceRequest) (*domain.RecoveryAdvice, error) {
	if err := s.reserve(ctx, userID, "recovery_advice", domain.RecoveryAdviceTokenEstimate); err != nil {
		return nil, err
	}

	latest, err := s.recovery.LatestScore(ctx, userID)
	if err != nil {
		return nil, err
	}

	var score string
	if latest != nil {
		score = fmt.Sprintf("%.1f", *latest)
	}
	prompt, err := render(recoveryAdviceTmpl, map[string]interface{}{
		"LatestScore": score,
		"SleepHours":  req.SleepHours,
		"Workouts":    listOrNone(req.RecentWorkouts),
		"Soreness":    listOrNone(req.CurrentSoreness),
		"Notes":       req.AdditionalNotes,
	})
	if err != nil {
		return nil, err
	}

	advice, used, err := s.client.Complete(ctx, chat(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate recovery advice: %w", err)
	}
	if used <= 0 {
		used = domain.RecoveryAdviceTokenEstimate
	}
	return &domain.RecoveryAdvice{Advice: advice, TokensUsed: used}, nil
}
