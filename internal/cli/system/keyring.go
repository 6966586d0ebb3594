package system

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/keyring"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store the AI API key in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored AI API key (masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the AI API key from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
}

type KeyringSetCmd struct {
	APIKey string `arg:"" help:"API key from console.groq.com."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	key := strings.TrimSpace(cmd.APIKey)
	if key == "" {
		return errors.New("API key cannot be empty")
	}
	if strings.ContainsAny(key, " \t\n") {
		return errors.New("API key must not contain whitespace")
	}
	if err := keyring.SetAPIKey(key); err != nil {
		return err
	}
	ctx.Println("✓ API key stored successfully in OS keyring")
	if os.Getenv(constants.APIKeyEnv) != "" {
		ctx.Printf("  Note: %s is set and takes precedence over the keyring.\n", constants.APIKeyEnv)
	}
	return nil
}

type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	key, err := keyring.GetAPIKey()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring. Use 'soulsync keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve API key from keyring: %w", err)
	}
	ctx.Println(keyring.Mask(key))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteAPIKey(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring")
		}
		return err
	}
	ctx.Println("✓ API key deleted from OS keyring")
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")

	if _, err := keyring.GetAPIKey(); err == nil {
		ctx.Println("✓ API key is stored in keyring")
	} else {
		ctx.Println("ℹ No API key stored in keyring")
	}
	if user, err := keyring.GetSessionUser(); err == nil {
		ctx.Printf("✓ Logged in as %s\n", user)
	} else {
		ctx.Println("ℹ Not logged in")
	}
	return nil
}
