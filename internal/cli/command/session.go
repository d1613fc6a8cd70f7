// Package command provides CLI command definitions for jobctl.
package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nodeops/jobctl/internal/cli/output"
	"github.com/nodeops/jobctl/internal/storage/credfile"
)

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Manage the cached node session",
		Subcommands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in to the node and persist the session token",
				Action: sessionLogin,
			},
			{
				Name:   "show",
				Usage:  "Display the cached session artifact",
				Action: sessionShow,
			},
			{
				Name:   "clear",
				Usage:  "Remove the cached session artifact",
				Action: sessionClear,
			},
		},
	}
}

// sessionLogin forces a fresh login, superseding any cached token.
func sessionLogin(c *cli.Context) error {
	svc, err := buildServices(c)
	if err != nil {
		return err
	}

	cred, err := svc.session.Refresh(c.Context)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(svc.cfg, c)
	if err != nil {
		return err
	}
	return formatter.Format(c.App.Writer, output.SessionView{
		Email:      svc.cfg.Node.Email,
		CookieName: cred.CookieName,
		IssuedAt:   cred.IssuedAt.Format(time.RFC3339),
		TokenFile:  svc.store.Path(),
	})
}

// sessionShow reads the artifact directly; no node round trip and no
// credential validation.
func sessionShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store := credfile.New(cfg.TokenFile)
	cred, err := store.Load()
	if err != nil {
		return err
	}
	if !cred.Valid() {
		fmt.Fprintln(c.App.Writer, "No cached session.")
		return nil
	}

	formatter, err := newFormatter(cfg, c)
	if err != nil {
		return err
	}
	return formatter.Format(c.App.Writer, output.SessionView{
		Email:      cfg.Node.Email,
		CookieName: cred.CookieName,
		IssuedAt:   cred.IssuedAt.Format(time.RFC3339),
		TokenFile:  store.Path(),
	})
}

func sessionClear(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store := credfile.New(cfg.TokenFile)
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Cached session removed.")
	return nil
}
