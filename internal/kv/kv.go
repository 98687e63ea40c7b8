package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("key not found")

// Store is the flat key-value surface the backend persists through. Keys are
// namespaced strings ("teacher:<id>", "user_role:<email>"); values are JSON
// blobs. List operations are prefix scans over the namespace.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	GetByPrefix(ctx context.Context, prefix string) ([][]byte, error)
}

// Key namespaces. The layout matches the persisted state the rest of the
// system scans against, so changing a prefix is a data migration.
const (
	PrefixStudyMaterial = "study_material:"
	PrefixTeacher       = "teacher:"
	PrefixAnnouncement  = "announcement:"
	PrefixGalleryPhoto  = "gallery_photo:"
	PrefixTimeEntry     = "time_entry:"
	PrefixActiveTime    = "active_time:"
	PrefixUserRole      = "user_role:"
	PrefixUserProfile   = "user_profile:"
	PrefixUserCred      = "user_cred:"
)

func StudyMaterialKey(id string) string { return PrefixStudyMaterial + id }
func TeacherKey(id string) string { return PrefixTeacher + id }
func AnnouncementKey(id string) string { return PrefixAnnouncement + id }
func GalleryPhotoKey(id string) string { return PrefixGalleryPhoto + id }
func TimeEntryKey(id string) string { return PrefixTimeEntry + id }
func ActiveTimeKey(userID string) string { return PrefixActiveTime + userID }
func UserRoleKey(email string) string { return PrefixUserRole + email }
func UserProfileKey(id string) string { return PrefixUserProfile + id }
func UserCredKey(email string) string { return PrefixUserCred + email }
