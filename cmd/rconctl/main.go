// rconctl: operación manual contra la API RCON y utilidades del dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/jose-valero/rcon-arma-bot/internal/adapters/httpapi"
	"github.com/jose-valero/rcon-arma-bot/internal/adapters/rcon"
)

var errUsage = errors.New("usage")

// readPassword se reemplaza en tests.
var readPassword = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: rconctl <command> [options] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  players                  List online players")
	fmt.Fprintln(w, "  bans                     List active bans")
	fmt.Fprintln(w, "  kick <uid>               Kick a player")
	fmt.Fprintln(w, "  raw <command...>         Send a raw RCON command")
	fmt.Fprintln(w, "  token [--user admin]     Mint a dashboard JWT (needs DASHBOARD_JWT_SECRET)")
	fmt.Fprintln(w, "  hashpw                   Prompt for a password and print its bcrypt hash")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "RCON options (default from env):")
	fmt.Fprintln(w, "  --server <id>     RCON_SERVER_ID")
	fmt.Fprintln(w, "  --token <token>   RCON_API_TOKEN")
	fmt.Fprintln(w, "  --base-url <url>  RCON_BASE_URL")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "players":
		return cmdPlayers(ctx, args[1:], out)
	case "bans":
		return cmdBans(ctx, args[1:], out)
	case "kick":
		return cmdKick(ctx, args[1:], out)
	case "raw":
		return cmdRaw(ctx, args[1:], out)
	case "token":
		return cmdToken(args[1:], out)
	case "hashpw":
		return cmdHashPW(out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
}

type rconFlags struct {
	server  *string
	token   *string
	baseURL *string
	timeout *time.Duration
}

func newRconFlags(name string) (*flag.FlagSet, rconFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	base := os.Getenv("RCON_BASE_URL")
	if base == "" {
		base = rcon.DefaultBaseURL
	}
	return fs, rconFlags{
		server:  fs.String("server", os.Getenv("RCON_SERVER_ID"), "server id"),
		token:   fs.String("token", os.Getenv("RCON_API_TOKEN"), "api token"),
		baseURL: fs.String("base-url", base, "rcon api base url"),
		timeout: fs.Duration("timeout", 10*time.Second, "request timeout"),
	}
}

func (f rconFlags) client() *rcon.Client {
	return rcon.New(rcon.WithBaseURL(*f.baseURL), rcon.WithTimeout(*f.timeout))
}

func cmdPlayers(ctx context.Context, args []string, out io.Writer) error {
	fs, rf := newRconFlags("players")
	if err := fs.Parse(args); err != nil {
		return err
	}
	players, err := rf.client().Players(ctx, *rf.server, *rf.token)
	if err != nil {
		return describe(err)
	}
	if len(players) == 0 {
		fmt.Fprintln(out, "No players online.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUID\tNAME")
	for _, p := range players {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.UID, p.Name)
	}
	return w.Flush()
}

func cmdBans(ctx context.Context, args []string, out io.Writer) error {
	fs, rf := newRconFlags("bans")
	if err := fs.Parse(args); err != nil {
		return err
	}
	bans, err := rf.client().Bans(ctx, *rf.server, *rf.token)
	if err != nil {
		return describe(err)
	}
	if len(bans) == 0 {
		fmt.Fprintln(out, "No bans found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UID\tNAME")
	for _, b := range bans {
		fmt.Fprintf(w, "%s\t%s\n", b.UID, b.Name)
	}
	return w.Flush()
}

func cmdKick(ctx context.Context, args []string, out io.Writer) error {
	fs, rf := newRconFlags("kick")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("kick needs exactly one uid: %w", errUsage)
	}
	uid := fs.Arg(0)
	if err := rf.client().Kick(ctx, *rf.server, *rf.token, uid); err != nil {
		return describe(err)
	}
	fmt.Fprintf(out, "kicked %s\n", uid)
	return nil
}

func cmdRaw(ctx context.Context, args []string, out io.Writer) error {
	fs, rf := newRconFlags("raw")
	if err := fs.Parse(args); err != nil {
		return err
	}
	command := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if command == "" {
		return fmt.Errorf("raw needs a command: %w", errUsage)
	}
	data, err := rf.client().Command(ctx, *rf.server, *rf.token, command)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintln(out, strings.TrimRight(data, "\n"))
	return nil
}

func cmdToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", os.Getenv("DASHBOARD_ADMIN_USER"), "username in the token")
	ttl := fs.Duration("ttl", httpapi.DefaultTokenTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	secret := os.Getenv("DASHBOARD_JWT_SECRET")
	if secret == "" {
		return errors.New("DASHBOARD_JWT_SECRET is not set")
	}
	if *user == "" {
		return fmt.Errorf("token needs --user: %w", errUsage)
	}
	tok, err := httpapi.NewAuth(secret, *user, "", *ttl).Token(*user)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tok)
	return nil
}

func cmdHashPW(out io.Writer) error {
	fmt.Fprint(os.Stderr, "Enter password: ")
	password, err := readPassword()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	confirm, err := readPassword()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if string(password) != string(confirm) {
		return errors.New("passwords do not match")
	}
	hash, err := httpapi.HashPassword(string(password))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}

// describe agrega la clase del fallo al error de la API.
func describe(err error) error {
	return fmt.Errorf("%s: %w", rcon.Classify(err).Describe(), err)
}
