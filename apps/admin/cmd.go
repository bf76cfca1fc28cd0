package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	echoapi "github.com/AnjishnuSengupta/Hackathon-AI-Edu/apps/api/echo"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/notification"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
)

var (
	isTerminalFunc = term.IsTerminal // mockable
	readLineFunc   = readLine        // mockable

	errHelp        = errors.New("help provided")
	errAborted     = errors.New("aborted")
	errNeedsDB     = errors.New("this command needs the postgres engine")
	errNeedConfirm = errors.New("refusing to grant the admin role without a terminal; pass -yes")
)

// adminSession is the identity of the operator running the CLI.
var adminSession = core.Session{UserID: "admin-cli", DisplayName: "Admin CLI", Role: core.RoleAdmin}

type commandLine struct {
	conf          *core.Config
	db            *sql.DB // nil unless the engine is postgres
	catalog       *catalog.Service
	users         *user.Service
	notifications *notification.Service
	out           io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                      - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  seed                                        - add the sample lectures and subject resources")
	fmt.Fprintln(cli.out, "  setrole -user ID -role user|admin [-yes]    - change the role of a user")
	fmt.Fprintln(cli.out, "  notify -user ID -message TEXT               - send a notification to a user")
	fmt.Fprintln(cli.out, "  token -user ID [-email EMAIL] [-name NAME]  - print a development JWT")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	setRoleCmd := flag.NewFlagSet("setrole", flag.ExitOnError)
	setRoleUser := setRoleCmd.String("user", "", "The user's ID.")
	setRoleRole := setRoleCmd.String("role", "", "The new role: user or admin.")
	setRoleYes := setRoleCmd.Bool("yes", false, "Do not ask for confirmation.")

	notifyCmd := flag.NewFlagSet("notify", flag.ExitOnError)
	notifyUser := notifyCmd.String("user", "", "The recipient's ID.")
	notifyMessage := notifyCmd.String("message", "", "The message.")

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenUser := tokenCmd.String("user", "", "The user's ID.")
	tokenEmail := tokenCmd.String("email", "", "The user's email.")
	tokenName := tokenCmd.String("name", "", "The user's display name.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed(ctx)
	case "setrole":
		if err := setRoleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setRoleUser == "" || *setRoleRole == "" {
			setRoleCmd.Usage()
			return errHelp
		}
		return cli.setRole(ctx, *setRoleUser, core.Role(*setRoleRole), *setRoleYes)
	case "notify":
		if err := notifyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *notifyUser == "" || *notifyMessage == "" {
			notifyCmd.Usage()
			return errHelp
		}
		return cli.notify(ctx, *notifyUser, *notifyMessage)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenUser == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(user.Identity{UserID: *tokenUser, Email: *tokenEmail, DisplayName: *tokenName})
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) seed(ctx context.Context) error {
	samples := catalog.SampleItems()
	var created int
	for _, ni := range samples {
		ok, err := cli.catalog.Seed(ctx, catalog.SampleID(ni), ni)
		if err != nil {
			return err
		}
		if ok {
			created++
		}
	}
	fmt.Fprintf(cli.out, "seeded %d of %d sample items\n", created, len(samples))
	return nil
}

func (cli *commandLine) setRole(ctx context.Context, userID string, role core.Role, yes bool) error {
	role = core.Role(core.CleanString(string(role), true /* lower */))
	if role == core.RoleAdmin && !yes {
		if !isTerminalFunc(int(os.Stdin.Fd())) {
			return errNeedConfirm
		}
		fmt.Fprintf(cli.out, "Grant the admin role to %q? [y/N] ", userID)
		answer, err := readLineFunc()
		if err != nil {
			return err
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			return errAborted
		}
	}

	p, err := cli.users.SetRole(ctx, adminSession, userID, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (%s) is now %s\n", p.ID, p.DisplayName, p.Role)
	return nil
}

func (cli *commandLine) notify(ctx context.Context, userID, message string) error {
	n, err := cli.notifications.Create(ctx, adminSession, notification.NewNotification{UserID: userID, Message: message})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "notification %s sent to %s\n", n.ID, n.UserID)
	return nil
}

func (cli *commandLine) token(ident user.Identity) error {
	token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, ident))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}

func readLine() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return line, nil
}
