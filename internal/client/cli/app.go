// Package cli is the securechat command line: key management, account and
// session commands, and sending and reading end-to-end encrypted messages.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/securechat/internal/client/client"
	"github.com/dmitrijs2005/securechat/internal/client/config"
	"github.com/dmitrijs2005/securechat/internal/client/services"
	"github.com/dmitrijs2005/securechat/internal/filex"
	"github.com/dmitrijs2005/securechat/internal/flagx"
)

const stateFile = "state.db"

// maxAttachmentBytes bounds files passed with send --file.
const maxAttachmentBytes = 10 << 20

// configFlags are consumed by the config package and hidden from cobra.
var configFlags = []string{"-a", "-s", "-t", "-c", "-config"}

type App struct {
	config *config.Config
	repos  *client.Repositories
	auth   services.AuthService
	chat   services.ChatService
	in     *bufio.Reader
	out    io.Writer
}

// NewApp opens the local state under c.StateDir and builds the services
// against the relay at c.ServerURL.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	dir, err := filex.EnsureDir(c.StateDir)
	if err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}

	repos, err := client.InitDatabase(ctx, filepath.Join(dir, stateFile))
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api, err := client.NewHTTPClient(c.ServerURL, &http.Client{Timeout: c.RequestTimeout})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	return &App{
		config: c,
		repos:  repos,
		auth:   services.NewAuthService(api, repos.DB),
		chat:   services.NewChatService(api, repos.DB, api.HTTP()),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.repos.Close()
}

// Run executes the command named by args, which may still contain the
// config flags.
func (a *App) Run(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(flagx.StripArgs(args, configFlags))
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.out)
	return root.ExecuteContext(ctx)
}
