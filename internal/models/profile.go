package models

import "time"

type VAProfile struct {
	UserID     int64     `json:"user_id"`
	FullName   string    `json:"full_name"`
	Headline   string    `json:"headline"`
	Bio        string    `json:"bio"`
	Skills     []string  `json:"skills"`
	HourlyRate float64   `json:"hourly_rate"`
	ResumeURL  string    `json:"resume_url"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type EmployerProfile struct {
	UserID      int64     `json:"user_id"`
	FullName    string    `json:"full_name"`
	CompanyName string    `json:"company_name"`
	Bio         string    `json:"bio"`
	UpdatedAt   time.Time `json:"updated_at"`
}
