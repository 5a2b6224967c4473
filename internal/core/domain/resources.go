package domain

import "time"

// Identifiable is implemented by every item a resource screen lists.
type Identifiable interface {
	ResourceID() string
}

// PlatformUser is a founder, mentor or investor account as listed on the users screen.
type PlatformUser struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	UserType  string    `json:"user_type"`
	Status    string    `json:"status"`
	KYCStatus string    `json:"kyc_status,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u PlatformUser) ResourceID() string { return u.ID }

// KYCSubmission is a know-your-customer review item.
type KYCSubmission struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	UserName    string     `json:"user_name"`
	Level       string     `json:"kyc_level"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

func (k KYCSubmission) ResourceID() string { return k.ID }

// ServiceRequest is a marketplace service awaiting or past approval.
type ServiceRequest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	RequestedBy string    `json:"requested_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s ServiceRequest) ResourceID() string { return s.ID }

// Mentor is a mentorship profile managed by staff.
type Mentor struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Industry    string  `json:"industry"`
	Expertise   string  `json:"expertise,omitempty"`
	Status      string  `json:"status"`
	Rating      float64 `json:"rating,omitempty"`
	ActiveMatch int     `json:"active_mentees,omitempty"`
}

func (m Mentor) ResourceID() string { return m.ID }

// Pitch is an investment pitch submitted by a founder.
type Pitch struct {
	ID           string    `json:"id"`
	StartupName  string    `json:"startup_name"`
	FounderID    string    `json:"founder_id"`
	Industry     string    `json:"industry"`
	Stage        string    `json:"stage"`
	Status       string    `json:"status"`
	AmountSought float64   `json:"amount_sought"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

func (p Pitch) ResourceID() string { return p.ID }
