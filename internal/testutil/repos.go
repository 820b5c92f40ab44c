package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// UserRepo implements domain.UserRepository
type UserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func NewUserRepo() *UserRepo { return &UserRepo{users: make(map[string]domain.User)} }

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return domain.ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// ProfileRepo implements domain.ProfileRepository
type ProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{profiles: make(map[string]domain.UserProfile)}
}

// Put stores p directly, replacing any existing profile
func (r *ProfileRepo) Put(p *domain.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = *p
}

func (r *ProfileRepo) GetByUserID(_ context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepo) Create(_ context.Context, p *domain.UserProfile) error {
	r.Put(p)
	return nil
}

func (r *ProfileRepo) Update(_ context.Context, userID string, u *domain.ProfileUpdate) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		p = domain.UserProfile{UserID: userID, Units: "metric"}
	}
	if u.FirstName != nil {
		p.FirstName = u.FirstName
	}
	if u.LastName != nil {
		p.LastName = u.LastName
	}
	if u.DateOfBirth != nil {
		p.DateOfBirth = u.DateOfBirth
	}
	if u.Gender != nil {
		p.Gender = u.Gender
	}
	if u.HeightCm != nil {
		p.HeightCm = u.HeightCm
	}
	if u.WeightKg != nil {
		p.WeightKg = u.WeightKg
	}
	if u.FitnessGoal != nil {
		p.FitnessGoal = u.FitnessGoal
	}
	if u.ActivityLevel != nil {
		p.ActivityLevel = u.ActivityLevel
	}
	if u.ExperienceLevel != nil {
		p.ExperienceLevel = u.ExperienceLevel
	}
	if u.AvailableEquipment != nil {
		p.AvailableEquipment = u.AvailableEquipment
	}
	if u.DietaryRestrictions != nil {
		p.DietaryRestrictions = u.DietaryRestrictions
	}
	if u.Units != nil {
		p.Units = *u.Units
	}
	if u.AvatarURL != nil {
		p.AvatarURL = u.AvatarURL
	}
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return &p, nil
}

// RefreshTokenRepo implements domain.RefreshTokenRepository
type RefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func NewRefreshTokenRepo() *RefreshTokenRepo {
	return &RefreshTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *RefreshTokenRepo) Create(_ context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now()
	cp := *t
	r.tokens[t.TokenHash] = &cp
	return nil
}

func (r *RefreshTokenRepo) FindByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *RefreshTokenRepo) RevokeByHash(_ context.Context, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok || t.Revoked {
		return false, nil
	}
	t.Revoked = true
	return true, nil
}

func (r *RefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

// ExerciseRepo implements domain.ExerciseRepository
type ExerciseRepo struct {
	mu        sync.Mutex
	exercises map[string]domain.Exercise
}

func NewExerciseRepo(seed ...*domain.Exercise) *ExerciseRepo {
	r := &ExerciseRepo{exercises: make(map[string]domain.Exercise)}
	for _, ex := range seed {
		r.exercises[ex.ID] = *ex
	}
	return r
}

func (r *ExerciseRepo) Create(_ context.Context, ex *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.exercises {
		if existing.Name == ex.Name && existing.CreatedBy == ex.CreatedBy {
			return domain.ErrDuplicateExercise
		}
	}
	r.exercises[ex.ID] = *ex
	return nil
}

func (r *ExerciseRepo) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ex, ok := r.exercises[id]
	if !ok {
		return nil, domain.ErrExerciseNotFound
	}
	return &ex, nil
}

func (r *ExerciseRepo) List(_ context.Context, f domain.ExerciseFilter) ([]*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Exercise{}
	for _, ex := range r.exercises {
		if f.Query != "" && !strings.Contains(strings.ToLower(ex.Name), strings.ToLower(f.Query)) {
			continue
		}
		if f.Category != "" && ex.Category != f.Category {
			continue
		}
		ex := ex
		out = append(out, &ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ExerciseRepo) NamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make(map[string]string)
	for _, id := range ids {
		if ex, ok := r.exercises[id]; ok {
			names[id] = ex.Name
		}
	}
	return names, nil
}

// PlanRepo implements domain.WorkoutPlanRepository
type PlanRepo struct {
	mu    sync.Mutex
	plans map[string]domain.WorkoutPlan
}

func NewPlanRepo() *PlanRepo { return &PlanRepo{plans: make(map[string]domain.WorkoutPlan)} }

func (r *PlanRepo) Create(_ context.Context, p *domain.WorkoutPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.plans[p.ID] = *p
	return nil
}

func (r *PlanRepo) GetByID(_ context.Context, id string) (*domain.WorkoutPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *PlanRepo) ListByUser(_ context.Context, userID string) ([]*domain.WorkoutPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.WorkoutPlan{}
	for _, p := range r.plans {
		if p.UserID == userID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *PlanRepo) Update(_ context.Context, p *domain.WorkoutPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[p.ID]; !ok {
		return domain.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	r.plans[p.ID] = *p
	return nil
}

func (r *PlanRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

// SessionRepo implements domain.WorkoutSessionRepository
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.WorkoutSession
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]domain.WorkoutSession)}
}

func (r *SessionRepo) Create(_ context.Context, s *domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *SessionRepo) GetByID(_ context.Context, id string) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *SessionRepo) userSessions(userID string, completedOnly bool) []*domain.WorkoutSession {
	out := []*domain.WorkoutSession{}
	for _, s := range r.sessions {
		if s.UserID != userID || (completedOnly && s.CompletedAt == nil) {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

func (r *SessionRepo) ListByUser(_ context.Context, userID string, skip, limit int) ([]*domain.WorkoutSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.userSessions(userID, false)
	total := int64(len(all))
	if skip >= len(all) {
		return []*domain.WorkoutSession{}, total, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], total, nil
}

func (r *SessionRepo) ListCompletedByUser(_ context.Context, userID string) ([]*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.userSessions(userID, true), nil
}

func (r *SessionRepo) Complete(_ context.Context, id string, completedAt time.Time, durationMinutes int, totalVolumeKg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.CompletedAt != nil {
		return domain.ErrNotFound
	}
	s.CompletedAt = &completedAt
	s.DurationMinutes = &durationMinutes
	s.TotalVolumeKg = &totalVolumeKg
	r.sessions[id] = s
	return nil
}

func (r *SessionRepo) Reopen(_ context.Context, id string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.CompletedAt == nil || !s.CompletedAt.Equal(completedAt) {
		return domain.ErrNotFound
	}
	s.CompletedAt = nil
	s.DurationMinutes = nil
	s.TotalVolumeKg = nil
	r.sessions[id] = s
	return nil
}

// SetRepo implements domain.SessionSetRepository
type SetRepo struct {
	mu   sync.Mutex
	sets []domain.SessionSet
}

func NewSetRepo() *SetRepo { return &SetRepo{} }

func (r *SetRepo) Create(_ context.Context, s *domain.SessionSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.sets = append(r.sets, *s)
	return nil
}

func (r *SetRepo) ListBySession(_ context.Context, sessionID string) ([]*domain.SessionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.SessionSet{}
	for _, s := range r.sets {
		if s.SessionID == sessionID {
			s := s
			out = append(out, &s)
		}
	}
	return out, nil
}

// DailyVolumeRepo implements domain.DailyVolumeRepository
type DailyVolumeRepo struct {
	mu   sync.Mutex
	rows map[string]domain.DailyVolume
}

func NewDailyVolumeRepo() *DailyVolumeRepo {
	return &DailyVolumeRepo{rows: make(map[string]domain.DailyVolume)}
}

func (r *DailyVolumeRepo) Increment(_ context.Context, userID string, day time.Time, d domain.VolumeDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	date := domain.StartOfDay(day)
	id := domain.DailyVolumeID(userID, date)
	row, ok := r.rows[id]
	if !ok {
		row = domain.DailyVolume{ID: id, UserID: userID, Date: date}
	}
	row.TotalVolume += d.Volume
	row.TotalSets += d.Sets
	row.TotalReps += d.Reps
	row.SessionCount += d.Sessions
	row.UpdatedAt = time.Now().UTC()
	r.rows[id] = row
	return nil
}

func (r *DailyVolumeRepo) ListRange(_ context.Context, userID string, from, to time.Time) ([]*domain.DailyVolume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.DailyVolume{}
	for _, row := range r.rows {
		if row.UserID == userID && inRange(row.Date, from, to) {
			row := row
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *DailyVolumeRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, row := range r.rows {
		if row.UserID == userID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// PRRepo implements domain.PersonalRecordRepository as an append-only slice
type PRRepo struct {
	mu      sync.Mutex
	records []domain.PersonalRecord
}

func NewPRRepo() *PRRepo { return &PRRepo{} }

// All returns a copy of every stored record in insertion order
func (r *PRRepo) All() []domain.PersonalRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PersonalRecord(nil), r.records...)
}

func (r *PRRepo) MaxWeight(_ context.Context, userID, exerciseID string) (*float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *float64
	for _, pr := range r.records {
		if pr.UserID != userID || pr.ExerciseID != exerciseID || pr.PRType != domain.PRTypeWeight || pr.WeightKg == nil {
			continue
		}
		if best == nil || *pr.WeightKg > *best {
			v := *pr.WeightKg
			best = &v
		}
	}
	return best, nil
}

func (r *PRRepo) MaxRepsAtWeight(_ context.Context, userID, exerciseID string, weightKg float64) (*int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *int
	for _, pr := range r.records {
		if pr.UserID != userID || pr.ExerciseID != exerciseID || pr.PRType != domain.PRTypeReps {
			continue
		}
		if pr.WeightKg == nil || *pr.WeightKg != weightKg || pr.Reps == nil {
			continue
		}
		if best == nil || *pr.Reps > *best {
			v := *pr.Reps
			best = &v
		}
	}
	return best, nil
}

func (r *PRRepo) Create(_ context.Context, pr *domain.PersonalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *pr)
	return nil
}

func (r *PRRepo) DeleteBySessionSet(_ context.Context, userID, setID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	var removed int64
	for _, pr := range r.records {
		if pr.UserID == userID && pr.SessionSetID == setID {
			removed++
			continue
		}
		kept = append(kept, pr)
	}
	r.records = kept
	return removed, nil
}

func (r *PRRepo) filter(keep func(domain.PersonalRecord) bool) []*domain.PersonalRecord {
	out := []*domain.PersonalRecord{}
	for i := len(r.records) - 1; i >= 0; i-- {
		if keep(r.records[i]) {
			pr := r.records[i]
			out = append(out, &pr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AchievedAt.After(out[j].AchievedAt) })
	return out
}

func (r *PRRepo) ListByUser(_ context.Context, userID string, limit int) ([]*domain.PersonalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filter(func(pr domain.PersonalRecord) bool { return pr.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PRRepo) ListPendingCelebrations(_ context.Context, userID string) ([]*domain.PersonalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(pr domain.PersonalRecord) bool { return pr.UserID == userID && !pr.Celebrated }), nil
}

func (r *PRRepo) MarkCelebrated(_ context.Context, userID, prID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == prID && r.records[i].UserID == userID {
			r.records[i].Celebrated = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *PRRepo) CountBetween(_ context.Context, userID string, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.filter(func(pr domain.PersonalRecord) bool {
		return pr.UserID == userID && inRange(pr.AchievedAt, from, to)
	})), nil
}

// RecoveryRepo implements domain.RecoveryRepository
type RecoveryRepo struct {
	mu   sync.Mutex
	logs map[string]domain.RecoveryLog
}

func NewRecoveryRepo() *RecoveryRepo {
	return &RecoveryRepo{logs: make(map[string]domain.RecoveryLog)}
}

func (r *RecoveryRepo) GetByDate(_ context.Context, userID string, day time.Time) (*domain.RecoveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	date := domain.StartOfDay(day)
	for _, l := range r.logs {
		if l.UserID == userID && l.Date.Equal(date) {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (r *RecoveryRepo) Save(_ context.Context, l *domain.RecoveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.UpdatedAt = time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = l.UpdatedAt
	}
	r.logs[l.ID] = *l
	return nil
}

func (r *RecoveryRepo) sorted(userID string, keep func(domain.RecoveryLog) bool, newestFirst bool) []*domain.RecoveryLog {
	out := []*domain.RecoveryLog{}
	for _, l := range r.logs {
		if l.UserID == userID && keep(l) {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (r *RecoveryRepo) ListRecent(_ context.Context, userID string, limit int) ([]*domain.RecoveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sorted(userID, func(domain.RecoveryLog) bool { return true }, true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *RecoveryRepo) ListRange(_ context.Context, userID string, from, to time.Time) ([]*domain.RecoveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(userID, func(l domain.RecoveryLog) bool { return inRange(l.Date, from, to) }, false), nil
}

// FoodRepo implements domain.FoodRepository
type FoodRepo struct {
	mu    sync.Mutex
	foods map[string]domain.FoodItem
}

func NewFoodRepo(seed ...*domain.FoodItem) *FoodRepo {
	r := &FoodRepo{foods: make(map[string]domain.FoodItem)}
	for _, f := range seed {
		r.foods[f.ID] = *f
	}
	return r
}

func (r *FoodRepo) Search(_ context.Context, query string, limit int) ([]*domain.FoodItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.FoodItem{}
	for _, f := range r.foods {
		if query == "" || strings.Contains(strings.ToLower(f.Name), strings.ToLower(query)) {
			f := f
			out = append(out, &f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FoodRepo) Create(_ context.Context, f *domain.FoodItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.CreatedAt = time.Now().UTC()
	r.foods[f.ID] = *f
	return nil
}

func (r *FoodRepo) GetByID(_ context.Context, id string) (*domain.FoodItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.foods[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

// NutritionLogRepo implements domain.NutritionLogRepository
type NutritionLogRepo struct {
	mu   sync.Mutex
	logs map[string]domain.NutritionLog
}

func NewNutritionLogRepo() *NutritionLogRepo {
	return &NutritionLogRepo{logs: make(map[string]domain.NutritionLog)}
}

func (r *NutritionLogRepo) getOrCreate(userID string, day time.Time) domain.NutritionLog {
	date := domain.StartOfDay(day)
	id := domain.DayLogID(userID, date)
	l, ok := r.logs[id]
	if !ok {
		now := time.Now().UTC()
		l = domain.NutritionLog{ID: id, UserID: userID, Date: date, Meals: []domain.MealEntry{}, CreatedAt: now, UpdatedAt: now}
		r.logs[id] = l
	}
	return l
}

func (r *NutritionLogRepo) GetOrCreate(_ context.Context, userID string, day time.Time) (*domain.NutritionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.getOrCreate(userID, day)
	return &l, nil
}

func (r *NutritionLogRepo) AddMeal(_ context.Context, userID string, day time.Time, meal domain.MealEntry) (*domain.NutritionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.getOrCreate(userID, day)
	l.Meals = append(l.Meals, meal)
	l.TotalCalories += meal.Calories
	l.TotalProteinG += meal.ProteinG
	l.TotalCarbsG += meal.CarbsG
	l.TotalFatG += meal.FatG
	l.UpdatedAt = time.Now().UTC()
	r.logs[l.ID] = l
	return &l, nil
}

func (r *NutritionLogRepo) ListRange(_ context.Context, userID string, from, to time.Time) ([]*domain.NutritionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.NutritionLog{}
	for _, l := range r.logs {
		if l.UserID == userID && inRange(l.Date, from, to) {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// HydrationRepo implements domain.HydrationRepository
type HydrationRepo struct {
	mu   sync.Mutex
	logs map[string]domain.HydrationLog
}

func NewHydrationRepo() *HydrationRepo {
	return &HydrationRepo{logs: make(map[string]domain.HydrationLog)}
}

func (r *HydrationRepo) getOrCreate(userID string, day time.Time, target int) domain.HydrationLog {
	date := domain.StartOfDay(day)
	id := domain.DayLogID(userID, date)
	l, ok := r.logs[id]
	if !ok {
		now := time.Now().UTC()
		l = domain.HydrationLog{ID: id, UserID: userID, Date: date, TargetMl: target, Entries: []domain.HydrationEntry{}, CreatedAt: now, UpdatedAt: now}
		r.logs[id] = l
	}
	return l
}

func (r *HydrationRepo) GetOrCreate(_ context.Context, userID string, day time.Time, defaultTargetMl int) (*domain.HydrationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.getOrCreate(userID, day, defaultTargetMl)
	return &l, nil
}

func (r *HydrationRepo) AddEntry(_ context.Context, userID string, day time.Time, e domain.HydrationEntry, defaultTargetMl int) (*domain.HydrationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.getOrCreate(userID, day, defaultTargetMl)
	l.Entries = append(l.Entries, e)
	l.TotalMl += e.AmountMl
	r.logs[l.ID] = l
	return &l, nil
}

func (r *HydrationRepo) SetTarget(_ context.Context, userID string, day time.Time, targetMl int) (*domain.HydrationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.getOrCreate(userID, day, targetMl)
	l.TargetMl = targetMl
	r.logs[l.ID] = l
	return &l, nil
}

func (r *HydrationRepo) ListRange(_ context.Context, userID string, from, to time.Time) ([]*domain.HydrationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.HydrationLog{}
	for _, l := range r.logs {
		if l.UserID == userID && inRange(l.Date, from, to) {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// MeasurementRepo implements domain.BodyMeasurementRepository
type MeasurementRepo struct {
	mu   sync.Mutex
	rows []domain.BodyMeasurement
}

func NewMeasurementRepo() *MeasurementRepo { return &MeasurementRepo{} }

func (r *MeasurementRepo) Create(_ context.Context, m *domain.BodyMeasurement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.CreatedAt = time.Now().UTC()
	r.rows = append(r.rows, *m)
	return nil
}

func (r *MeasurementRepo) ListByUser(_ context.Context, userID string, limit int) ([]*domain.BodyMeasurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.BodyMeasurement{}
	for _, m := range r.rows {
		if m.UserID == userID {
			m := m
			out = append(out, &m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MeasuredAt.After(out[j].MeasuredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PhotoRepo implements domain.ProgressPhotoRepository
type PhotoRepo struct {
	mu     sync.Mutex
	photos []domain.ProgressPhoto
}

func NewPhotoRepo() *PhotoRepo { return &PhotoRepo{} }

func (r *PhotoRepo) Create(_ context.Context, p *domain.ProgressPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.CreatedAt = time.Now().UTC()
	r.photos = append(r.photos, *p)
	return nil
}

func (r *PhotoRepo) ListByUser(_ context.Context, userID string) ([]*domain.ProgressPhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.ProgressPhoto{}
	for _, p := range r.photos {
		if p.UserID == userID {
			p := p
			out = append(out, &p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out, nil
}

var (
	_ domain.UserRepository            = (*UserRepo)(nil)
	_ domain.ProfileRepository         = (*ProfileRepo)(nil)
	_ domain.RefreshTokenRepository    = (*RefreshTokenRepo)(nil)
	_ domain.ExerciseRepository        = (*ExerciseRepo)(nil)
	_ domain.WorkoutPlanRepository     = (*PlanRepo)(nil)
	_ domain.WorkoutSessionRepository  = (*SessionRepo)(nil)
	_ domain.SessionSetRepository      = (*SetRepo)(nil)
	_ domain.DailyVolumeRepository     = (*DailyVolumeRepo)(nil)
	_ domain.PersonalRecordRepository  = (*PRRepo)(nil)
	_ domain.RecoveryRepository        = (*RecoveryRepo)(nil)
	_ domain.FoodRepository            = (*FoodRepo)(nil)
	_ domain.NutritionLogRepository    = (*NutritionLogRepo)(nil)
	_ domain.HydrationRepository       = (*HydrationRepo)(nil)
	_ domain.BodyMeasurementRepository = (*MeasurementRepo)(nil)
	_ domain.ProgressPhotoRepository   = (*PhotoRepo)(nil)
	_ domain.CacheRepository           = (*MemoryCache)(nil)
	_ domain.KeyLocker                 = (*MutexLocker)(nil)
	_ domain.KeyLocker                 = BusyLocker{}
	_ domain.TokenBudget               = (*MemoryTokenBudget)(nil)
	_ domain.FileRepository            = (*MemoryFileStore)(nil)
)
