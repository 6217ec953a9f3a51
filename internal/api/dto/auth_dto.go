package dto

// SignupRequest payload for registration.
type SignupRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	IsOrganizer bool   `json:"is_organizer"`
}

// ActivateRequest payload for account activation.
type ActivateRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResendCodeRequest payload for requesting a fresh confirmation code.
type ResendCodeRequest struct {
	Email string `json:"email"`
}

// SigninRequest payload for login.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest payload for requesting a reset link.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for redeeming a reset token.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
