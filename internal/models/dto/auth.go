package dto

import "github.com/hongminglow/marketplace-auth/internal/models"

type RegisterRequest struct {
	Role        string `json:"role"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`

	// vendor
	PIN               string `json:"pin"`
	StorefrontName    string `json:"storefrontName"`
	RestaurantName    string `json:"restaurantName"`
	StorefrontAddress string `json:"storefrontAddress"`

	// delivery
	VehicleType  string `json:"vehicleType"`
	VehiclePlate string `json:"vehiclePlate"`
}

type LoginRequest struct {
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PINLoginRequest struct {
	Role string `json:"role"`
	PIN  string `json:"pin"`
}

type ForgotPasswordRequest struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type SendVerificationRequest struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

type VerifyEmailRequest struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type AuthResponse struct {
	Token   string                 `json:"token"`
	Profile models.Authenticatable `json:"profile"`
}

type SessionResponse struct {
	Profile models.Authenticatable `json:"profile"`
	Role    models.Role            `json:"role"`
}
