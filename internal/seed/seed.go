package seed

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"montessori/server/internal/auth"
	"montessori/server/internal/kv"
	"montessori/server/internal/model"
	"montessori/server/internal/policy"
)

type demoUser struct {
	Email    string
	Password string
	Role     policy.Role
	Name     string
}

var demoUsers = []demoUser{
	{Email: "admin@montessori.edu", Password: "admin123", Role: policy.RoleAdmin, Name: "School Administrator"},
	{Email: "teacher@montessori.edu", Password: "teacher123", Role: policy.RoleLeadTeacher, Name: "Ms. Johnson"},
	{Email: "parent@montessori.edu", Password: "parent123", Role: policy.RoleParent, Name: "John Parent"},
}

var demoMaterials = []model.StudyMaterial{
	{ID: "1", Name: "Topic-1: Language Arts", Weeks: 4, Category: "language", Month: "august"},
	{ID: "2", Name: "Topic-2: Mathematics", Weeks: 6, Category: "math", Month: "september"},
	{ID: "3", Name: "Topic-3: Cultural Studies", Weeks: 3, Category: "culture", Month: "october"},
	{ID: "4", Name: "Topic-4: Practical Life", Weeks: 2, Category: "practical", Month: "november"},
}

var demoTeachers = []model.Teacher{
	{
		ID:                "1",
		Name:              "Ms. Sarah Johnson",
		EmployeeNumber:    "EMP001",
		Email:             "teacher@montessori.edu",
		Address:           "123 School St, City, State",
		WorkAuthorization: "Authorized",
		Designation:       "Lead Teacher",
		SalaryType:        "Bi-Weekly",
		WagePerHour:       25.50,
	},
}

// DemoData populates the store with the demo accounts and fixtures the
// dashboards expect. Existing records are left alone so restarts do not
// clobber data created through the API.
func DemoData(ctx context.Context, store kv.Store) error {
	for _, user := range demoUsers {
		if _, err := store.Get(ctx, kv.UserRoleKey(user.Email)); err == nil {
			continue
		} else if !errors.Is(err, kv.ErrNotFound) {
			return err
		}

		hash, err := auth.HashPassword(user.Password)
		if err != nil {
			return err
		}
		cred := model.Credential{
			ID:           uuid.NewString(),
			Email:        user.Email,
			Name:         user.Name,
			PasswordHash: hash,
		}
		if err := setJSON(ctx, store, kv.UserCredKey(user.Email), cred); err != nil {
			return err
		}
		if err := setJSON(ctx, store, kv.UserRoleKey(user.Email), string(user.Role)); err != nil {
			return err
		}
		profile := model.Profile{
			ID:        cred.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      string(user.Role),
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := setJSON(ctx, store, kv.UserProfileKey(cred.ID), profile); err != nil {
			return err
		}
		log.Printf("seeded demo user %s with role %s", user.Email, user.Role)
	}

	for _, material := range demoMaterials {
		if err := ensure(ctx, store, kv.StudyMaterialKey(material.ID), material); err != nil {
			return err
		}
	}
	for _, teacher := range demoTeachers {
		if err := ensure(ctx, store, kv.TeacherKey(teacher.ID), teacher); err != nil {
			return err
		}
	}
	return nil
}

func ensure(ctx context.Context, store kv.Store, key string, value any) error {
	if _, err := store.Get(ctx, key); err == nil {
		return nil
	} else if !errors.Is(err, kv.ErrNotFound) {
		return err
	}
	return setJSON(ctx, store, key, value)
}

func setJSON(ctx context.Context, store kv.Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, data)
}
