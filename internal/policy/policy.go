package policy

// Role is the school-wide role resolved once at login and cached on the
// session. The zero value is not valid; unknown inputs parse to RoleParent.
type Role string

const (
	RoleAdmin       Role = "admin"
	RolePrincipal   Role = "principal"
	RoleLead        Role = "lead"
	RoleLeadTeacher Role = "lead_teacher"
	RoleSubTeacher  Role = "sub_teacher"
	RoleParent      Role = "parent"
)

var allRoles = map[Role]struct{}{
	RoleAdmin:       {},
	RolePrincipal:   {},
	RoleLead:        {},
	RoleLeadTeacher: {},
	RoleSubTeacher:  {},
	RoleParent:      {},
}

// ParseRole maps a stored role string to a Role, falling back to the
// least-privilege role for anything it does not recognize.
func ParseRole(value string) Role {
	role := Role(value)
	if _, ok := allRoles[role]; ok {
		return role
	}
	return RoleParent
}

func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

// Permission names an action gated by a role allow-list. The same table is
// consulted by the HTTP handlers (reject the call) and the dashboards (hide
// the tab), so the two layers cannot drift.
type Permission string

const (
	PermManageRoster        Permission = "manage_roster"
	PermAuthorAnnouncements Permission = "author_announcements"
	PermAuthorMaterials     Permission = "author_materials"
	PermTrackTime           Permission = "track_time"
	PermUploadGallery       Permission = "upload_gallery"
	PermViewTimeEntries     Permission = "view_time_entries"
)

var allowLists = map[Permission][]Role{
	PermManageRoster:        {RoleAdmin, RolePrincipal, RoleLead},
	PermAuthorAnnouncements: {RoleAdmin, RolePrincipal, RoleLead},
	PermAuthorMaterials:     {RoleAdmin, RolePrincipal, RoleLead},
	PermViewTimeEntries:     {RoleAdmin, RolePrincipal, RoleLead},
	PermTrackTime:           {RoleLeadTeacher, RoleSubTeacher},
	PermUploadGallery:       {RoleLeadTeacher, RoleSubTeacher, RoleAdmin, RolePrincipal, RoleLead},
}

// Allowed reports whether role is in the allow-list for perm.
func Allowed(perm Permission, role Role) bool {
	for _, allowed := range allowLists[perm] {
		if allowed == role {
			return true
		}
	}
	return false
}

// AllowedRoles returns a copy of the allow-list for perm.
func AllowedRoles(perm Permission) []Role {
	roles := allowLists[perm]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// IsAdminLike reports whether role lands on the admin dashboard.
func IsAdminLike(role Role) bool {
	return role == RoleAdmin || role == RolePrincipal || role == RoleLead
}

// IsTeacherLike reports whether role lands on the teacher dashboard.
func IsTeacherLike(role Role) bool {
	return role == RoleLeadTeacher || role == RoleSubTeacher
}
