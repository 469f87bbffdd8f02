package dto

// LoginRequest authenticates any principal type.
type LoginRequest struct {
	UserType string `form:"user_type" json:"user_type" validate:"required,oneof=admin subadmin student"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// ForgotPasswordRequest starts a student password reset.
type ForgotPasswordRequest struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a student password reset.
type ResetPasswordRequest struct {
	Token           string `form:"token" json:"token" validate:"required"`
	Password        string `form:"password" json:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" validate:"required,eqfield=Password"`
}

// AddDepartmentRequest creates a department.
type AddDepartmentRequest struct {
	Name string `form:"name" json:"name" validate:"required,max=150"`
	Code string `form:"code" json:"code" validate:"omitempty,max=20"`
}

// UpdateStrandRequest renames a strand.
type UpdateStrandRequest struct {
	Name string `form:"name" json:"name" validate:"required,max=150"`
}

// CreateSubAdminRequest creates a research adviser account.
type CreateSubAdminRequest struct {
	FirstName   string   `form:"first_name" json:"first_name" validate:"required,max=100"`
	LastName    string   `form:"last_name" json:"last_name" validate:"required,max=100"`
	Email       string   `form:"email" json:"email" validate:"required,email,max=190"`
	Password    string   `form:"password" json:"password" validate:"required,min=8"`
	Department  string   `form:"department" json:"department" validate:"required,max=150"`
	Permissions []string `form:"permissions" json:"permissions" validate:"dive,oneof=manage_departments upload_research manage_strands"`
}

// RestoreRequest is the JSON body of the restore endpoint.
type RestoreRequest struct {
	ID string `form:"id" json:"id"`
}

// UploadResearchRequest carries the text fields of a research upload.
type UploadResearchRequest struct {
	Title      string `form:"title" json:"title" validate:"required,max=255"`
	Abstract   string `form:"abstract" json:"abstract" validate:"required"`
	Keywords   string `form:"keywords" json:"keywords" validate:"max=500"`
	Author     string `form:"author" json:"author" validate:"required,max=255"`
	Department string `form:"department" json:"department" validate:"required,max=150"`
	Strand     string `form:"strand" json:"strand" validate:"max=150"`
}

// UpdateProfileRequest edits the caller's profile and optionally changes
// the password.
type UpdateProfileRequest struct {
	FirstName       string `form:"first_name" json:"first_name" validate:"required,max=100"`
	LastName        string `form:"last_name" json:"last_name" validate:"required,max=100"`
	Email           string `form:"email" json:"email" validate:"required,email,max=190"`
	Department      string `form:"department" json:"department" validate:"max=150"`
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password" validate:"omitempty,min=8"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// WantsPasswordChange reports whether any password field was filled in.
func (r UpdateProfileRequest) WantsPasswordChange() bool {
	return r.CurrentPassword != "" || r.NewPassword != "" || r.ConfirmPassword != ""
}
