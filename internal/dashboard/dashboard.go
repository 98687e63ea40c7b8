// Package dashboard decides which screens a session is offered. It is pure
// table dispatch over the role policy; rendering lives elsewhere.
package dashboard

import (
	"fmt"

	"montessori/server/internal/policy"
)

type Kind string

const (
	KindAdmin   Kind = "admin"
	KindTeacher Kind = "teacher"
	KindParent  Kind = "parent"
)

type Tab string

const (
	TabOverview      Tab = "overview"
	TabMaterials     Tab = "materials"
	TabTeachers      Tab = "teachers"
	TabClassroom     Tab = "classroom"
	TabTime          Tab = "time"
	TabAnnouncements Tab = "announcements"
	TabGallery       Tab = "gallery"
	TabReports       Tab = "reports"
)

// KindFor buckets a role into one of the three dashboards.
func KindFor(role policy.Role) Kind {
	switch {
	case policy.IsAdminLike(role):
		return KindAdmin
	case policy.IsTeacherLike(role):
		return KindTeacher
	default:
		return KindParent
	}
}

// TabsFor returns the tab set for a role, in display order. The
// announcements tab on the admin dashboard is gated by the same allow-list
// the server enforces on POST /announcements.
func TabsFor(role policy.Role) []Tab {
	switch KindFor(role) {
	case KindAdmin:
		tabs := []Tab{TabOverview, TabMaterials, TabTeachers, TabClassroom, TabTime}
		if policy.Allowed(policy.PermAuthorAnnouncements, role) {
			tabs = append(tabs, TabAnnouncements)
		}
		return tabs
	case KindTeacher:
		return []Tab{TabOverview, TabMaterials, TabGallery, TabTime}
	default:
		return []Tab{TabOverview, TabMaterials, TabGallery, TabReports, TabAnnouncements}
	}
}

// Dashboard holds the per-session view state: the offered tabs and which one
// is active. Nothing here survives logout.
type Dashboard struct {
	Kind      Kind
	tabs      []Tab
	activeTab Tab
}

func New(role policy.Role) *Dashboard {
	tabs := TabsFor(role)
	return &Dashboard{
		Kind:      KindFor(role),
		tabs:      tabs,
		activeTab: tabs[0],
	}
}

func (d *Dashboard) Tabs() []Tab {
	out := make([]Tab, len(d.tabs))
	copy(out, d.tabs)
	return out
}

func (d *Dashboard) ActiveTab() Tab {
	return d.activeTab
}

func (d *Dashboard) HasTab(tab Tab) bool {
	for _, t := range d.tabs {
		if t == tab {
			return true
		}
	}
	return false
}

// Select activates a tab. Any offered tab is reachable from any other; only
// tabs outside the dashboard's set are rejected.
func (d *Dashboard) Select(tab Tab) error {
	if !d.HasTab(tab) {
		return fmt.Errorf("tab %q not available on %s dashboard", tab, d.Kind)
	}
	d.activeTab = tab
	return nil
}
