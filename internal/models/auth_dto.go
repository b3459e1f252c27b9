package models

type SignupRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     Role   `json:"role" form:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type VAProfileRequest struct {
	FullName   string   `json:"full_name" form:"full_name"`
	Headline   string   `json:"headline" form:"headline"`
	Bio        string   `json:"bio" form:"bio"`
	Skills     []string `json:"skills" form:"skills"`
	HourlyRate float64  `json:"hourly_rate" form:"hourly_rate"`
	ResumeURL  string   `json:"resume_url" form:"resume_url"`
}

type EmployerProfileRequest struct {
	FullName    string `json:"full_name" form:"full_name"`
	CompanyName string `json:"company_name" form:"company_name"`
	Bio         string `json:"bio" form:"bio"`
}
