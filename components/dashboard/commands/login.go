package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// LoginInput carries demo credentials. Result receives the issued session.
type LoginInput struct {
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Result   *dashboard.Session `json:"-"`
}

// LogoutInput identifies the session to discard.
type LogoutInput struct {
	Token string `json:"token"`
}

type authService interface {
	Login(ctx context.Context, email, password string) (dashboard.Session, error)
	Logout(ctx context.Context, token string) error
}

// LoginCommand issues sessions.
type LoginCommand struct {
	service   authService
	telemetry Telemetry
}

// NewLoginCommand creates the command.
func NewLoginCommand(service authService, telemetry Telemetry) *LoginCommand {
	return &LoginCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LoginInput] = (*LoginCommand)(nil)

// Execute authenticates and stores the session in msg.Result.
func (c *LoginCommand) Execute(ctx context.Context, msg LoginInput) error {
	if c.service == nil {
		return errors.New("login command requires service")
	}
	session, err := c.service.Login(ctx, msg.Email, msg.Password)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = session
	}
	c.telemetry.Record(ctx, "organizeit.command.login", map[string]any{"role": session.User.Role})
	return nil
}

// LogoutCommand discards sessions.
type LogoutCommand struct {
	service   authService
	telemetry Telemetry
}

// NewLogoutCommand creates the command.
func NewLogoutCommand(service authService, telemetry Telemetry) *LogoutCommand {
	return &LogoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LogoutInput] = (*LogoutCommand)(nil)

// Execute deletes the session.
func (c *LogoutCommand) Execute(ctx context.Context, msg LogoutInput) error {
	if c.service == nil {
		return errors.New("logout command requires service")
	}
	if err := c.service.Logout(ctx, msg.Token); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "organizeit.command.logout", nil)
	return nil
}
