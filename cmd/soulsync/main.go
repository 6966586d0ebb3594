package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/cli"
	"github.com/julianstephens/soulsync/internal/cli/accounts"
	"github.com/julianstephens/soulsync/internal/cli/backups"
	"github.com/julianstephens/soulsync/internal/cli/chat"
	"github.com/julianstephens/soulsync/internal/cli/dashboard"
	"github.com/julianstephens/soulsync/internal/cli/goals"
	"github.com/julianstephens/soulsync/internal/cli/journals"
	"github.com/julianstephens/soulsync/internal/cli/moods"
	"github.com/julianstephens/soulsync/internal/cli/system"
	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/errors"
	"github.com/julianstephens/soulsync/internal/keyring"
	"github.com/julianstephens/soulsync/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Store   string        `help:"User store: a .json file, a .db SQLite file, or a PostgreSQL connection string without embedded credentials." env:"SOULSYNC_STORE" default:"${store}"`
	Debug   bool          `help:"Log debug output to stderr."`
	BaseURL string        `name:"base-url" help:"OpenAI-compatible API endpoint." env:"SOULSYNC_BASE_URL" default:"${base_url}"`
	Model   string        `help:"Model used for chat replies." env:"SOULSYNC_MODEL" default:"${chat_model}"`
	Timeout time.Duration `help:"Timeout for each assistant request." default:"60s"`

	Register accounts.RegisterCmd `cmd:"" help:"Create an account."`
	Login    accounts.LoginCmd    `cmd:"" help:"Log in and remember the session."`
	Logout   accounts.LogoutCmd   `cmd:"" help:"Forget the current session."`
	Whoami   accounts.WhoamiCmd   `cmd:"" help:"Show the logged-in user."`
	Passwd   accounts.PasswdCmd   `cmd:"" help:"Change your password."`

	Goal      goals.GoalCmd          `cmd:"" help:"Manage goals."`
	Mood      moods.MoodCmd          `cmd:"" help:"Log and review moods."`
	Journal   journals.JournalCmd    `cmd:"" help:"Write and read journal entries."`
	Chat      chat.ChatCmd           `cmd:"" help:"Talk with the SoulSync assistant."`
	Dashboard dashboard.DashboardCmd `cmd:"" help:"Show goal progress and mood trends."`
	Week      dashboard.WeekCmd      `cmd:"" help:"Summarize the past seven days."`

	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Init    system.InitCmd    `cmd:"" help:"Initialize soulsync storage."`
	Import  system.ImportCmd  `cmd:"" help:"Copy users from another store."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Backup  backups.BackupCmd `cmd:"" help:"Manage store backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the AI API key in the OS keyring."`
	Mcp     system.McpCmd     `cmd:"" help:"Serve your records to MCP clients over stdio."`
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal wellness companion: goals, moods, journaling and an AI chat."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"store":      constants.DefaultStorePath,
			"base_url":   constants.DefaultBaseURL,
			"chat_model": constants.DefaultChatModel,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: cli.ConfigDir(CLI.Store)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	store, err := cli.OpenStore(CLI.Store)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	// doctor reports on stores that cannot be opened instead of refusing to run.
	if err := store.Init(); err != nil {
		if !strings.HasPrefix(ctx.Command(), "doctor") {
			store.Close()
			errors.Fatal(err)
		}
		logger.Warn("Store initialization failed", "error", err)
	}

	apiKey, source := keyring.ResolveAPIKey(os.Getenv)
	logger.Debug("Resolved API key", "source", source)

	ai := assistant.New(assistant.Config{
		APIKey:    apiKey,
		BaseURL:   CLI.BaseURL,
		ChatModel: CLI.Model,
		Timeout:   CLI.Timeout,
	})

	appCtx := cli.NewContext(store, ai)

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
