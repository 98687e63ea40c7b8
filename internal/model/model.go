package model

// Flat resource records stored as JSON values in the KV store. Relationships
// between records (photo classroom, entry owner) are denormalized strings;
// nothing in this layer enforces referential integrity.

// Credential is the stored login record for a seeded demo account. Real
// deployments delegate authentication to the external provider; this record
// only exists so the server runs standalone.
type Credential struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
}

type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type StudyMaterial struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Weeks       int    `json:"weeks"`
	Category    string `json:"category"`
	Month       string `json:"month"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
}

type Teacher struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	EmployeeNumber    string  `json:"employee_number"`
	Email             string  `json:"email"`
	Address           string  `json:"address,omitempty"`
	WorkAuthorization string  `json:"work_authorization,omitempty"`
	Designation       string  `json:"designation,omitempty"`
	SalaryType        string  `json:"salary_type,omitempty"`
	WagePerHour       float64 `json:"wage_per_hour,omitempty"`
	CreatedAt         string  `json:"created_at,omitempty"`
	CreatedBy         string  `json:"created_by,omitempty"`
	UpdatedAt         string  `json:"updated_at,omitempty"`
	UpdatedBy         string  `json:"updated_by,omitempty"`
}

type Announcement struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Priority       string `json:"priority,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
	CreatedAt      string `json:"created_at"`
	CreatedBy      string `json:"created_by,omitempty"`
}

type GalleryPhoto struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl"`
	Classroom   string `json:"classroom,omitempty"`
	UploadedAt  string `json:"uploaded_at"`
	UploadedBy  string `json:"uploaded_by,omitempty"`
}

type TimeEntry struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Email       string  `json:"email"`
	ClockIn     string  `json:"clock_in"`
	ClockOut    string  `json:"clock_out,omitempty"`
	Date        string  `json:"date"`
	HoursWorked float64 `json:"hours_worked,omitempty"`
	AutoClosed  bool    `json:"auto_closed,omitempty"`
}

type ChildInfo struct {
	ChildName        string   `json:"childName"`
	ClassName        string   `json:"className"`
	Age              string   `json:"age"`
	Teacher          string   `json:"teacher"`
	RecentActivities []string `json:"recentActivities,omitempty"`
}
