// Package adminctl implements the operator commands that manage admin
// accounts directly against the database. It is the only way to grant
// admin rights.
package adminctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/flagx"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

var (
	ErrUsage            = errors.New("usage error")
	ErrPasswordMismatch = errors.New("password does not match")
)

const usage = `Usage: adminctl <command> [flags]

Commands:
  create-admin  -email E [-name N] [-password P]   create or reset an admin account
  promote       -email E                           grant admin rights
  demote        -email E                           revoke admin rights
  verify-login  -email E [-password P]             check a password against the stored hash

The password is prompted for when -password is omitted.
Server configuration flags (-d, -c, ...) are accepted as well.`

// AdminService is the subset of services.UserService the commands need.
type AdminService interface {
	CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
	VerifyLogin(ctx context.Context, email, password string) (bool, error)
}

type App struct {
	svc AdminService
	out io.Writer
}

func NewApp(svc AdminService, out io.Writer) *App {
	return &App{svc: svc, out: out}
}

type options struct {
	email    string
	name     string
	password string
}

func parseOptions(cmd string, args []string) (options, error) {
	var o options

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.email, "email", "", "account email")
	fs.StringVar(&o.name, "name", "", "display name")
	fs.StringVar(&o.password, "password", "", "password")

	if err := fs.Parse(flagx.FilterArgs(args, "email", "name", "password")); err != nil {
		return o, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if strings.TrimSpace(o.email) == "" {
		return o, fmt.Errorf("%w: -email is required", ErrUsage)
	}
	return o, nil
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return ErrUsage
	}

	cmd := args[0]
	switch cmd {
	case "help", "-h", "-help", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	case "create-admin", "promote", "demote", "verify-login":
	default:
		fmt.Fprintln(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}

	o, err := parseOptions(cmd, args[1:])
	if err != nil {
		return err
	}

	switch cmd {
	case "create-admin":
		return a.createAdmin(ctx, o)
	case "promote":
		return a.setAdmin(ctx, o.email, true)
	case "demote":
		return a.setAdmin(ctx, o.email, false)
	default:
		return a.verifyLogin(ctx, o)
	}
}

// password returns -password or prompts for one.
func (a *App) password(o options) (string, error) {
	if o.password != "" {
		return o.password, nil
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) createAdmin(ctx context.Context, o options) error {
	pw, err := a.password(o)
	if err != nil {
		return err
	}

	u, err := a.svc.CreateAdmin(ctx, o.name, o.email, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Admin user %s is ready (id %s)\n", u.Email, u.ID)
	return nil
}

func (a *App) setAdmin(ctx context.Context, email string, isAdmin bool) error {
	if err := a.svc.SetAdmin(ctx, email, isAdmin); err != nil {
		return err
	}
	if isAdmin {
		fmt.Fprintf(a.out, "%s is now an admin\n", email)
	} else {
		fmt.Fprintf(a.out, "%s is no longer an admin\n", email)
	}
	return nil
}

func (a *App) verifyLogin(ctx context.Context, o options) error {
	pw, err := a.password(o)
	if err != nil {
		return err
	}

	ok, err := a.svc.VerifyLogin(ctx, o.email, pw)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Password does NOT match")
		return ErrPasswordMismatch
	}
	fmt.Fprintln(a.out, "Password matches")
	return nil
}
