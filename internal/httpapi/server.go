package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"montessori/server/internal/auth"
	"montessori/server/internal/config"
	"montessori/server/internal/kv"
	"montessori/server/internal/model"
	"montessori/server/internal/policy"
)

var validate = validator.New()

type Server struct {
	cfg   config.Config
	store kv.Store
}

func NewServer(cfg config.Config, store kv.Store) *Server {
	return &Server{cfg: cfg, store: store}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", s.handleLogin)

	r.With(s.authMiddleware).Get("/user/role", s.handleGetUserRole)

	r.With(s.authMiddleware).Get("/study-materials", s.handleListStudyMaterials)
	r.With(s.authMiddleware, s.requirePermission(policy.PermAuthorMaterials)).Post("/study-materials", s.handleCreateStudyMaterial)

	r.With(s.authMiddleware).Get("/teachers", s.handleListTeachers)
	r.With(s.authMiddleware, s.requirePermission(policy.PermManageRoster)).Post("/teachers", s.handleCreateTeacher)
	r.With(s.authMiddleware, s.requirePermission(policy.PermManageRoster)).Put("/teachers/{teacherId}", s.handleUpdateTeacher)
	r.With(s.authMiddleware, s.requirePermission(policy.PermManageRoster)).Delete("/teachers/{teacherId}", s.handleDeleteTeacher)

	r.With(s.authMiddleware).Get("/announcements", s.handleListAnnouncements)
	r.With(s.authMiddleware, s.requirePermission(policy.PermAuthorAnnouncements)).Post("/announcements", s.handleCreateAnnouncement)

	r.With(s.authMiddleware).Get("/gallery", s.handleListGallery)
	r.With(s.authMiddleware, s.requirePermission(policy.PermUploadGallery)).Post("/gallery/upload", s.handleUploadPhoto)

	r.With(s.authMiddleware, s.requirePermission(policy.PermTrackTime)).Post("/time-tracking/clock-in", s.handleClockIn)
	r.With(s.authMiddleware).Post("/time-tracking/clock-out", s.handleClockOut)
	r.With(s.authMiddleware, s.requirePermission(policy.PermViewTimeEntries)).Get("/time-tracking/entries", s.handleListTimeEntries)

	r.With(s.authMiddleware).Get("/parent/child-info", s.handleGetChildInfo)

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

// requirePermission resolves the caller's role from the role table and
// rejects the call when the role is outside the permission's allow-list.
// A missing role mapping resolves to parent, never to an elevated role.
func (s *Server) requirePermission(perm policy.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "missing_token")
				return
			}
			role, err := s.roleForEmail(r.Context(), claims.Email)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "server_error")
				return
			}
			if !policy.Allowed(perm, role) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) roleForEmail(ctx context.Context, email string) (policy.Role, error) {
	value, err := s.store.Get(ctx, kv.UserRoleKey(email))
	if errors.Is(err, kv.ErrNotFound) {
		return policy.RoleParent, nil
	}
	if err != nil {
		return policy.RoleParent, err
	}
	var stored string
	if err := json.Unmarshal(value, &stored); err != nil {
		return policy.RoleParent, err
	}
	return policy.ParseRole(stored), nil
}

// Login

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	User        userSummary `json:"user"`
}

type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	var cred model.Credential
	if err := s.getJSON(r.Context(), kv.UserCredKey(req.Email), &cred); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := auth.CheckPassword(cred.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	role, err := s.roleForEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: cred.ID,
		Email:  cred.Email,
		Name:   cred.Name,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		User: userSummary{
			ID:    cred.ID,
			Email: cred.Email,
			Name:  cred.Name,
			Role:  string(role),
		},
	})
}

func (s *Server) handleGetUserRole(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	role, err := s.roleForEmail(r.Context(), claims.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role": string(role)})
}

// Study materials

type createStudyMaterialRequest struct {
	Name        string `json:"name" validate:"required"`
	Weeks       int    `json:"weeks" validate:"gte=1"`
	Category    string `json:"category" validate:"required"`
	Month       string `json:"month" validate:"required"`
	Description string `json:"description"`
}

func (s *Server) handleListStudyMaterials(w http.ResponseWriter, r *http.Request) {
	materials := make([]model.StudyMaterial, 0)
	if err := s.listByPrefix(r.Context(), kv.PrefixStudyMaterial, &materials); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

func (s *Server) handleCreateStudyMaterial(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req createStudyMaterialRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	material := model.StudyMaterial{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Weeks:       req.Weeks,
		Category:    req.Category,
		Month:       req.Month,
		Description: req.Description,
		CreatedAt:   nowISO(),
		CreatedBy:   claims.UserID,
	}
	if err := s.setJSON(r.Context(), kv.StudyMaterialKey(material.ID), material); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"material": material})
}

// Teacher roster

type teacherRequest struct {
	Name              string  `json:"name" validate:"required"`
	EmployeeNumber    string  `json:"employee_number"`
	Email             string  `json:"email" validate:"required,email"`
	Address           string  `json:"address"`
	WorkAuthorization string  `json:"work_authorization"`
	Designation       string  `json:"designation"`
	SalaryType        string  `json:"salary_type"`
	WagePerHour       float64 `json:"wage_per_hour" validate:"gte=0"`
}

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers := make([]model.Teacher, 0)
	if err := s.listByPrefix(r.Context(), kv.PrefixTeacher, &teachers); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"teachers": teachers})
}

func (s *Server) handleCreateTeacher(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req teacherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	teacher := model.Teacher{
		ID:                uuid.NewString(),
		Name:              req.Name,
		EmployeeNumber:    req.EmployeeNumber,
		Email:             req.Email,
		Address:           req.Address,
		WorkAuthorization: req.WorkAuthorization,
		Designation:       req.Designation,
		SalaryType:        req.SalaryType,
		WagePerHour:       req.WagePerHour,
		CreatedAt:         nowISO(),
		CreatedBy:         claims.UserID,
	}
	if err := s.setJSON(r.Context(), kv.TeacherKey(teacher.ID), teacher); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"teacher": teacher})
}

func (s *Server) handleUpdateTeacher(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	teacherID := chi.URLParam(r, "teacherId")

	var existing model.Teacher
	if err := s.getJSON(r.Context(), kv.TeacherKey(teacherID), &existing); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			writeError(w, http.StatusNotFound, "teacher_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	var req teacherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	existing.Name = req.Name
	existing.EmployeeNumber = req.EmployeeNumber
	existing.Email = req.Email
	existing.Address = req.Address
	existing.WorkAuthorization = req.WorkAuthorization
	existing.Designation = req.Designation
	existing.SalaryType = req.SalaryType
	existing.WagePerHour = req.WagePerHour
	existing.UpdatedAt = nowISO()
	existing.UpdatedBy = claims.UserID

	if err := s.setJSON(r.Context(), kv.TeacherKey(teacherID), existing); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"teacher": existing})
}

func (s *Server) handleDeleteTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherId")
	if _, err := s.store.Get(r.Context(), kv.TeacherKey(teacherID)); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			writeError(w, http.StatusNotFound, "teacher_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.store.Del(r.Context(), kv.TeacherKey(teacherID)); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Announcements

type createAnnouncementRequest struct {
	Title          string `json:"title" validate:"required"`
	Content        string `json:"content" validate:"required"`
	Priority       string `json:"priority"`
	TargetAudience string `json:"target_audience"`
}

func (s *Server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements := make([]model.Announcement, 0)
	if err := s.listByPrefix(r.Context(), kv.PrefixAnnouncement, &announcements); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	sort.SliceStable(announcements, func(i, j int) bool {
		return announcements[i].CreatedAt > announcements[j].CreatedAt
	})
	writeJSON(w, http.StatusOK, map[string]any{"announcements": announcements})
}

func (s *Server) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req createAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	announcement := model.Announcement{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Content:        req.Content,
		Priority:       req.Priority,
		TargetAudience: req.TargetAudience,
		CreatedAt:      nowISO(),
		CreatedBy:      claims.UserID,
	}
	if err := s.setJSON(r.Context(), kv.AnnouncementKey(announcement.ID), announcement); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcement": announcement})
}

// Gallery

type uploadPhotoRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" validate:"required"`
	Classroom   string `json:"classroom"`
}

func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) {
	photos := make([]model.GalleryPhoto, 0)
	if err := s.listByPrefix(r.Context(), kv.PrefixGalleryPhoto, &photos); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos})
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	var req uploadPhotoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	photo := model.GalleryPhoto{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Classroom:   req.Classroom,
		UploadedAt:  nowISO(),
		UploadedBy:  claims.UserID,
	}
	if err := s.setJSON(r.Context(), kv.GalleryPhotoKey(photo.ID), photo); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"photo": photo})
}

// Time tracking

func (s *Server) handleClockIn(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	// A second clock-in while an entry is open would orphan the first one.
	if _, err := s.store.Get(r.Context(), kv.ActiveTimeKey(claims.UserID)); err == nil {
		writeError(w, http.StatusConflict, "already_clocked_in")
		return
	} else if !errors.Is(err, kv.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	now := time.Now().UTC()
	entry := model.TimeEntry{
		ID:      uuid.NewString(),
		UserID:  claims.UserID,
		Email:   claims.Email,
		ClockIn: now.Format(time.RFC3339),
		Date:    now.Format("2006-01-02"),
	}
	if err := s.setJSON(r.Context(), kv.TimeEntryKey(entry.ID), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.setJSON(r.Context(), kv.ActiveTimeKey(claims.UserID), entry.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeEntry": entry})
}

func (s *Server) handleClockOut(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var activeID string
	if err := s.getJSON(r.Context(), kv.ActiveTimeKey(claims.UserID), &activeID); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no_active_entry")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	var entry model.TimeEntry
	if err := s.getJSON(r.Context(), kv.TimeEntryKey(activeID), &entry); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	clockOut := time.Now().UTC()
	entry.ClockOut = clockOut.Format(time.RFC3339)
	entry.HoursWorked = hoursBetween(entry.ClockIn, clockOut)

	if err := s.setJSON(r.Context(), kv.TimeEntryKey(activeID), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if err := s.store.Del(r.Context(), kv.ActiveTimeKey(claims.UserID)); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeEntry": entry})
}

func (s *Server) handleListTimeEntries(w http.ResponseWriter, r *http.Request) {
	entries := make([]model.TimeEntry, 0)
	if err := s.listByPrefix(r.Context(), kv.PrefixTimeEntry, &entries); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ClockIn > entries[j].ClockIn
	})
	writeJSON(w, http.StatusOK, map[string]any{"timeEntries": entries})
}

// Parent

func (s *Server) handleGetChildInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.ChildInfo{
		ChildName: "Emma Smith",
		ClassName: "Primary A",
		Age:       "4-6",
		Teacher:   "Ms. Johnson",
	})
}

// Store helpers

func (s *Server) getJSON(ctx context.Context, key string, out any) error {
	value, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(value, out)
}

func (s *Server) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, key, data)
}

// listByPrefix scans a namespace and unmarshals every value into the slice
// pointed to by out.
func (s *Server) listByPrefix(ctx context.Context, prefix string, out any) error {
	values, err := s.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return err
	}
	joined := []byte{'['}
	for i, value := range values {
		if i > 0 {
			joined = append(joined, ',')
		}
		joined = append(joined, value...)
	}
	joined = append(joined, ']')
	return json.Unmarshal(joined, out)
}

// Utilities

func hoursBetween(clockIn string, clockOut time.Time) float64 {
	start, err := time.Parse(time.RFC3339, clockIn)
	if err != nil {
		return 0
	}
	hours := clockOut.Sub(start).Hours()
	if hours < 0 {
		return 0
	}
	return math.Round(hours*100) / 100
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
