package mail

import (
	"fmt"
	"time"
)

// PasswordReset renders the password reset OTP email.
func PasswordReset(to, name, code string, validFor time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Your password reset code",
		Body: fmt.Sprintf(
			"Hi %s,\n\nUse the code %s to reset your password. It expires in %d minutes.\n\nIf you did not request this, you can ignore this email.\n",
			greetingName(name), code, int(validFor.Minutes()),
		),
	}
}

// EmailVerification renders the email verification OTP email.
func EmailVerification(to, name, code string, validFor time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Verify your email address",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour verification code is %s. It expires in %d minutes.\n",
			greetingName(name), code, int(validFor.Minutes()),
		),
	}
}

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
