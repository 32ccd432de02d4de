package notifications

import (
	"context"
	"fmt"
	"strings"

	"tastebook/backend/internal/models"
	"tastebook/backend/pkg/config"
)

// SendPasswordResetEmail dispatches the reset link to the user. The send
// result is returned so the handler can surface failures instead of
// silently succeeding.
func SendPasswordResetEmail(ctx context.Context, user *models.User, token string) error {
	if DefaultEmailNotifier == nil {
		return fmt.Errorf("email notifier not initialized")
	}

	base := strings.TrimSuffix(config.Cfg.ExternalBaseURL, "/")
	resetLink := fmt.Sprintf("%s/reset_password/%s", base, token)

	bodyText := fmt.Sprintf(`To reset your password, visit the following link:
%s

This link expires in %s. If you did not make this request then simply ignore
this email and no changes will be made.
`, resetLink, config.Cfg.ResetTokenLifespan)

	bodyHTML := fmt.Sprintf(`
        <h2>Password Reset Request</h2>
        <p>To reset your password, click the link below:</p>
        <p><a href="%s">Reset Password</a></p>
        <p>This link expires in %s. If you did not make this request, ignore this email.</p>
    `, resetLink, config.Cfg.ResetTokenLifespan)

	return DefaultEmailNotifier.Send(ctx, user.Email, "Password Reset Request", bodyHTML, bodyText)
}
