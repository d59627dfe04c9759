package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/broadcast"
	"github.com/jrsteele09/go-auth-client/credentials/filerepo"
	"github.com/jrsteele09/go-auth-client/guard"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/session"
)

const appName = "authcli"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(os.Args) < 2 {
		displayAppname(appName)
		usage()
		return nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	api, err := authapi.New(cfg.API.BaseURL,
		authapi.WithTimeout(cfg.API.Timeout),
		authapi.WithLogger(log),
		authapi.WithOAuthProviders(cfg.Providers()),
	)
	if err != nil {
		return err
	}

	manager, err := session.New(api, filerepo.New(cfg.Credentials.Path), broadcast.New(),
		session.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout+5*time.Second)
	defer cancel()

	return dispatch(ctx, manager, os.Args[1], os.Args[2:])
}

func dispatch(ctx context.Context, manager *session.Manager, command string, args []string) error {
	switch command {
	case "login":
		return loginCmd(ctx, manager, args)
	case "logout":
		manager.Logout(ctx)
		fmt.Println("Signed out.")
		return nil
	case "whoami":
		return whoamiCmd(ctx, manager, args)
	case "register":
		return registerCmd(ctx, manager, args)
	case "verify":
		return verifyCmd(ctx, manager, args)
	case "resend":
		return resendCmd(ctx, manager, args)
	case "reset":
		return resetCmd(ctx, manager, args)
	case "profile":
		return profileCmd(ctx, manager, args)
	case "passwd":
		return passwdCmd(ctx, manager, args)
	case "oauth":
		return oauthCmd(ctx, manager, args)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func loginCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := manager.Login(ctx, *email, *password); err != nil {
		return errors.New(authapi.UserMessage(err))
	}
	fmt.Printf("Signed in as %s.\n", manager.Session().User.DisplayName())
	return nil
}

func whoamiCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	admin := fs.Bool("admin", false, "check admin access instead of plain sign-in")
	if err := fs.Parse(args); err != nil {
		return err
	}

	manager.CheckAuth(ctx)
	current := manager.Session()

	required := guard.PrivilegeUser
	if *admin {
		required = guard.PrivilegeAdmin
	}

	switch guard.Decide(current, required) {
	case guard.RenderContent:
		user := current.User
		fmt.Printf("%s <%s>\n", user.DisplayName(), user.Email)
		if user.HasAdminAccess() {
			fmt.Println("Access: admin")
		}
	case guard.RenderLogin:
		if current.LastError != "" {
			return errors.New(current.LastError)
		}
		return errors.New("not signed in")
	case guard.RenderDenied:
		return errors.New("signed in, but admin access is required")
	}
	return nil
}

func registerCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	firstName := fs.String("first", "", "first name")
	lastName := fs.String("last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := manager.Register(ctx, authapi.Registration{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
	})
	if err != nil {
		return errors.New(authapi.UserMessage(err))
	}

	if result.PendingVerification {
		fmt.Println(result.Message)
		return nil
	}
	fmt.Printf("Registered and signed in as %s.\n", result.User.DisplayName())
	return nil
}

func verifyCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	code := fs.String("code", "", "verification code from the email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := manager.VerifyEmail(ctx, *email, *code); err != nil {
		return errors.New(authapi.UserMessage(err))
	}
	fmt.Println("Email verified. You are signed in.")
	return nil
}

func resendCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("resend", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	msg, err := manager.ResendVerification(ctx, *email)
	if err != nil {
		return errors.New(authapi.UserMessage(err))
	}
	fmt.Println(msg)
	return nil
}

func resetCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	msg, err := manager.RequestPasswordReset(ctx, *email)
	if err != nil {
		return errors.New(authapi.UserMessage(err))
	}
	fmt.Println(msg)
	return nil
}

func profileCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	name := fs.String("name", "", "display name, split into first and last on save")
	bio := fs.String("bio", "", "profile bio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	update := authapi.ProfileUpdate{}
	if *name != "" {
		update.DisplayName = name
	}
	if *bio != "" {
		update.Bio = bio
	}

	if update == (authapi.ProfileUpdate{}) {
		return whoamiCmd(ctx, manager, nil)
	}

	profile, err := manager.UpdateProfile(ctx, update)
	if err != nil {
		return errors.New(authapi.UserMessage(err))
	}
	fmt.Printf("Profile updated: %s\n", profile.DisplayName())
	return nil
}

func passwdCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := manager.ChangePassword(ctx, *current, *next); err != nil {
		return errors.New(authapi.UserMessage(err))
	}
	fmt.Println("Password changed.")
	return nil
}

func oauthCmd(ctx context.Context, manager *session.Manager, args []string) error {
	fs := flag.NewFlagSet("oauth", flag.ExitOnError)
	provider := fs.String("provider", "google", "configured OAuth provider name")
	code := fs.String("code", "", "authorization code from the provider callback")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *code == "" {
		redirectURL, err := manager.StartOAuth(*provider)
		if err != nil {
			return errors.New(authapi.UserMessage(err))
		}
		fmt.Println("Open this URL in a browser to continue:")
		fmt.Println(redirectURL)
		fmt.Printf("Then finish with: %s oauth -provider %s -code <code>\n", appName, *provider)
		return nil
	}

	if err := manager.CompleteOAuth(ctx, *provider, *code); err != nil {
		return errors.New(authapi.UserMessage(err))
	}
	fmt.Printf("Signed in as %s.\n", manager.Session().User.DisplayName())
	return nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", cfg.Log.Level, err)
	}

	var log zerolog.Logger
	if cfg.Log.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger(), nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage() {
	fmt.Printf(`Usage: %s <command> [flags]

Commands:
  login     -email -password        Sign in and store tokens locally
  logout                            Sign out and clear stored tokens
  whoami    [-admin]                Show the current session
  register  -email -password [-first -last]
  verify    -email -code            Confirm an email address
  resend    -email                  Resend the verification email
  reset     -email                  Request a password reset link
  profile   [-name] [-bio]          Show or update the profile
  passwd    -current -new           Change the account password
  oauth     [-provider] [-code]     Sign in through an OAuth provider
`, appName)
}
