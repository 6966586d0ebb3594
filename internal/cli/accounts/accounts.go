package accounts

import (
	"errors"
	"fmt"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/keyring"
	"github.com/julianstephens/soulsync/internal/logger"
)

type RegisterCmd struct {
	Username string `arg:"" optional:"" help:"Username to register."`
	Password string `help:"Password (prompted when omitted)." env:"SOULSYNC_PASSWORD"`
	Login    bool   `help:"Log in after registering." default:"true" negatable:""`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	if err := cli.PromptCredentials(&c.Username, &c.Password, true); err != nil {
		return err
	}
	if err := ctx.Report(ctx.Records.Register(c.Username, c.Password)); err != nil {
		return err
	}
	if c.Login {
		return startSession(ctx, c.Username)
	}
	return nil
}

type LoginCmd struct {
	Username string `arg:"" optional:"" help:"Username."`
	Password string `help:"Password (prompted when omitted)." env:"SOULSYNC_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if err := cli.PromptCredentials(&c.Username, &c.Password, false); err != nil {
		return err
	}
	res, err := ctx.Records.Authenticate(c.Username, c.Password)
	if err != nil {
		return err
	}
	if !res.OK {
		logger.Info("Failed login", "username", c.Username)
		return &cli.RejectedError{Message: res.Message}
	}
	ctx.Printf("✓ %s\n", res.Message)
	return startSession(ctx, c.Username)
}

func startSession(ctx *cli.Context, username string) error {
	if err := keyring.SetSessionUser(username); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	ctx.User = username
	ctx.Printf("Logged in as %s\n", username)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.ClearSessionUser(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	ctx.User = ""
	ctx.Println("Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	ctx.Println(username)
	return nil
}

type PasswdCmd struct {
	Current string `help:"Current password (prompted when omitted)."`
	New     string `name:"new" help:"New password (prompted when omitted)."`
}

func (c *PasswdCmd) Run(ctx *cli.Context) error {
	username, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	if c.Current == "" {
		name := username
		if err := cli.PromptCredentials(&name, &c.Current, false); err != nil {
			return err
		}
	}
	if c.New == "" {
		name := username
		if err := cli.PromptCredentials(&name, &c.New, true); err != nil {
			return err
		}
	}
	if c.New == "" {
		return errors.New("new password cannot be empty")
	}
	return ctx.Report(ctx.Records.ChangePassword(username, c.Current, c.New))
}
