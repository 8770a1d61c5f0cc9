package api

import "time"

type Profile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    *string   `json:"photoURL,omitempty"`
	Role        string    `json:"role"`
	Phone       *string   `json:"phone,omitempty"`
	Position    *string   `json:"position,omitempty"`
	StartDate   *string   `json:"startDate,omitempty"`
	HourlyRate  *float64  `json:"hourlyRate,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LoginResponse is returned by /auth/login and /auth/register.
type LoginResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

type Shift struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	Position       string  `json:"position"`
	Status         string  `json:"status"`
	AssignedTo     *string `json:"assignedTo,omitempty"`
	AssignedToName *string `json:"assignedToName,omitempty"`
	Notes          string  `json:"notes"`
	Version        int64   `json:"version"`
	IsPast         bool    `json:"isPast"`
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ShiftID     *string    `json:"shiftId,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *string    `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Announcement struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Priority      string     `json:"priority"`
	IsActive      bool       `json:"isActive"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	CreatedByName string     `json:"createdByName"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Photo struct {
	ID             string    `json:"id"`
	Caption        string    `json:"caption"`
	UploadedByName string    `json:"uploadedByName"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Size           int64     `json:"size"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Likes          []string  `json:"likes"`
	CreatedAt      time.Time `json:"createdAt"`
}

type LikeState struct {
	Likes []string `json:"likes"`
	Liked bool     `json:"liked"`
}

type BulkFailure struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

type BulkResult struct {
	Created      []Shift       `json:"created"`
	TasksCreated int           `json:"tasksCreated"`
	Failed       []BulkFailure `json:"failed"`
}

type BulkRequest struct {
	Dates      []string `json:"dates,omitempty"`
	Recurrence string   `json:"recurrence,omitempty"`
	RRule      string   `json:"rrule,omitempty"`
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Template   string   `json:"template,omitempty"`
	StartTime  string   `json:"startTime,omitempty"`
	EndTime    string   `json:"endTime,omitempty"`
	Position   string   `json:"position,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	TaskSet    string   `json:"taskSet,omitempty"`
}

type ShiftTemplate struct {
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Position  string `json:"position"`
}

type TaskSet struct {
	Name  string `json:"name"`
	Tasks []struct {
		Title string `json:"title"`
	} `json:"tasks"`
}

type Recurrence struct {
	Name  string `json:"name"`
	RRule string `json:"rrule"`
}

type TemplateCatalog struct {
	Shifts      []ShiftTemplate `json:"shiftTemplates"`
	TaskSets    []TaskSet       `json:"taskSets"`
	Recurrences []Recurrence    `json:"recurrences"`
}

type DashboardStats struct {
	OpenShifts   int64 `json:"openShifts"`
	MyShifts     int64 `json:"myShifts"`
	PendingTasks int64 `json:"pendingTasks"`
}

type Dashboard struct {
	Greeting       string         `json:"greeting"`
	DisplayName    string         `json:"displayName"`
	Role           string         `json:"role"`
	UpcomingShifts []Shift        `json:"upcomingShifts"`
	Tasks          []Task         `json:"tasks"`
	Announcements  []Announcement `json:"announcements"`
	Stats          DashboardStats `json:"stats"`
}

type AuditRecord struct {
	ID           string    `json:"id"`
	UserID       *string   `json:"userID,omitempty"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resourceType"`
	ResourceID   *string   `json:"resourceID,omitempty"`
	Summary      string    `json:"summary"`
	IPAddress    string    `json:"ipAddress"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VersionInfo is returned by GET /version.
type VersionInfo struct {
	Service    string `json:"service"`
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	APIVersion string `json:"apiVersion"`
	Timezone   string `json:"timezone"`
	Storage    string `json:"storage"`
}
