package domain

// Volunteer is a registry entity owned by the remote directory. The client
// reads and writes it but never assigns id or timestamps.
type Volunteer struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Location         string `json:"location"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
	Skills           string `json:"skills"`
	Available        bool   `json:"available"`
	YearsExperience  int    `json:"years_experience"`
	Languages        string `json:"languages,omitempty"`
	Transportation   string `json:"transportation,omitempty"`
	BackgroundCheck  *bool  `json:"background_check,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	Notes            string `json:"notes,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

// SkillTags returns the volunteer's skills as a cleaned tag list.
func (v Volunteer) SkillTags() []string { return ParseTags(v.Skills) }

// LanguageTags returns the volunteer's languages as a cleaned tag list.
func (v Volunteer) LanguageTags() []string { return ParseTags(v.Languages) }

// NewVolunteer is the create payload. It has no id or timestamp fields.
type NewVolunteer struct {
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Location         string `json:"location"`
	Phone            string `json:"phone,omitempty"`
	Email            string `json:"email,omitempty"`
	Skills           string `json:"skills"`
	Available        bool   `json:"available"`
	YearsExperience  int    `json:"years_experience"`
	Languages        string `json:"languages,omitempty"`
	Transportation   string `json:"transportation,omitempty"`
	BackgroundCheck  *bool  `json:"background_check,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// VolunteerPatch is a partial update payload; nil fields are not sent.
type VolunteerPatch struct {
	Name             *string `json:"name,omitempty"`
	Age              *int    `json:"age,omitempty"`
	Location         *string `json:"location,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Email            *string `json:"email,omitempty"`
	Skills           *string `json:"skills,omitempty"`
	Available        *bool   `json:"available,omitempty"`
	YearsExperience  *int    `json:"years_experience,omitempty"`
	Languages        *string `json:"languages,omitempty"`
	Transportation   *string `json:"transportation,omitempty"`
	BackgroundCheck  *bool   `json:"background_check,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// VolunteersResponse is a single unpaginated page from the directory.
// Total is the server-side match count and may exceed len(Volunteers).
type VolunteersResponse struct {
	Volunteers []Volunteer `json:"volunteers"`
	Total      int         `json:"total"`
	Limit      int         `json:"limit"`
}

// Complete reports whether the page holds every matching volunteer.
func (r VolunteersResponse) Complete() bool {
	return r.Total <= len(r.Volunteers)
}

type DeleteResult struct {
	Message string `json:"message"`
}

type HealthStatus struct {
	Status string `json:"status"`
}
