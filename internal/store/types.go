package store

// Role is a Membership's role within a Space.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
)

// Valid reports whether r is one of the two literal roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleContributor
}

// TaskStatus is one of the three literal task lifecycle states.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusDone      TaskStatus = "done"
	StatusCancelled TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Space is the tenant boundary; every other entity hangs off space_id.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is a global identity, independent of any one space.
type User struct {
	ID                  string  `json:"id"`
	Email               string  `json:"email"`
	Display             string  `json:"display"`
	AvatarIcon          *string `json:"avatar_icon,omitempty"`
	PasswordHash        string  `json:"-"`
	SoundEnabled        bool    `json:"sound_enabled"`
	SoundVolume         int     `json:"sound_volume"`
	SoundTheme          string  `json:"sound_theme"`
	CustomSoundFileID   *string `json:"custom_sound_file_id,omitempty"`
	CustomSoundFileName *string `json:"custom_sound_file_name,omitempty"`
	CustomSoundDataURL  *string `json:"custom_sound_data_url,omitempty"`
	ProfileAttachments  string  `json:"profile_attachments"`
}

// SoundThemes is the fixed set of 8 valid sound_theme values (§4.4).
var SoundThemes = map[string]bool{
	"chime": true, "bell": true, "pop": true, "ping": true,
	"marimba": true, "glass": true, "drum": true, "none": true,
}

// Membership ties a User to a Space with a Role.
type Membership struct {
	ID      string `json:"id"`
	SpaceID string `json:"space_id"`
	UserID  string `json:"user_id"`
	Role    Role   `json:"role"`
}

// List is a container for tasks, ordered by opaque list_order.
type List struct {
	ID        string  `json:"id"`
	SpaceID   string  `json:"space_id"`
	Name      string  `json:"name"`
	Icon      *string `json:"icon,omitempty"`
	Color     *string `json:"color,omitempty"`
	ListOrder string  `json:"order"`
}

// ListGrant confers read/write access to a contributor for one list.
type ListGrant struct {
	ID      string `json:"id"`
	SpaceID string `json:"space_id"`
	ListID  string `json:"list_id"`
	UserID  string `json:"user_id"`
}

// Task is the unit the whole sync protocol exists to move around.
type Task struct {
	ID                   string     `json:"id"`
	SpaceID              string     `json:"space_id"`
	Title                string     `json:"title"`
	Status               TaskStatus `json:"status"`
	ListID               string     `json:"list_id"`
	MyDay                bool       `json:"my_day"`
	TaskOrder            string     `json:"order"`
	UpdatedTs            int64      `json:"updated_ts"`
	CreatedTs            int64      `json:"created_ts"`
	CompletedTs          *int64     `json:"completed_ts,omitempty"`
	URL                  *string    `json:"url,omitempty"`
	RecurRule            *string    `json:"recur_rule,omitempty"`
	Attachments          *string    `json:"attachments,omitempty"`
	DueDate              *string    `json:"due_date,omitempty"`
	OccurrencesCompleted int        `json:"occurrences_completed"`
	Notes                *string    `json:"notes,omitempty"`
	AssigneeUserID       *string    `json:"assignee_user_id,omitempty"`
	CreatedByUserID      *string    `json:"created_by_user_id,omitempty"`
}
