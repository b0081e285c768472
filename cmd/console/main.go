// Command console is the operator console for the domain monitoring
// service: login, registration, and the interactive domain dashboard.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/thexDman/domain-monitoring-devops/pkg/client"
	"github.com/thexDman/domain-monitoring-devops/pkg/console"
	"github.com/thexDman/domain-monitoring-devops/pkg/tokenstore"
)

func main() {
	app := App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:  "domwatch",
		Usage: "operator console for the domain monitoring service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "monitoring service address",
				EnvVars: []string{"DOMWATCH_SERVER"},
				Value:   "localhost:8080",
			},
			&cli.StringFlag{
				Name:    "token-file",
				Usage:   "session token file path",
				EnvVars: []string{"DOMWATCH_TOKEN_FILE"},
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			registerCommand(),
			consoleCommand(),
			logoutCommand(),
		},
	}
}

func setup(c *cli.Context) (*client.Client, *tokenstore.Store) {
	tokens := tokenstore.New(c.String("token-file"))
	return client.New(c.String("server"), tokens), tokens
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and open the console",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}},
		},
		Action: func(c *cli.Context) error {
			apiClient, tokens := setup(c)
			renderer := console.NewRenderer(os.Stdout)
			flow := console.NewAuthFlow(apiClient, tokens, renderer)

			username := c.String("username")
			if username == "" {
				username = strings.TrimSpace(prompt("Username: "))
			}
			password := c.String("password")
			if password == "" {
				password = prompt("Password: ")
			}

			if err := flow.Login(c.Context, username, password); err != nil {
				// The failure message was already rendered inline;
				// the operator stays on the login form.
				return cli.Exit("", 1)
			}

			// Successful login navigates straight to the console.
			con := console.New(apiClient, tokens, os.Stdin, os.Stdout)
			return con.Run(c.Context)
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create a new account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}},
			&cli.StringFlag{Name: "confirmation"},
		},
		Action: func(c *cli.Context) error {
			apiClient, tokens := setup(c)
			renderer := console.NewRenderer(os.Stdout)
			flow := console.NewAuthFlow(apiClient, tokens, renderer)

			username := c.String("username")
			if username == "" {
				username = strings.TrimSpace(prompt("Username: "))
			}
			password := c.String("password")
			if password == "" {
				password = prompt("Password: ")
			}
			confirmation := c.String("confirmation")
			if confirmation == "" {
				confirmation = prompt("Confirm password: ")
			}

			if err := flow.Register(c.Context, username, password, confirmation); err != nil {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func consoleCommand() *cli.Command {
	return &cli.Command{
		Name:  "console",
		Usage: "open the domain dashboard",
		Action: func(c *cli.Context) error {
			apiClient, tokens := setup(c)

			con := console.New(apiClient, tokens, os.Stdin, os.Stdout)
			err := con.Run(c.Context)
			if err == console.ErrNotAuthenticated {
				return cli.Exit("Not logged in. Run 'domwatch login' first.", 1)
			}
			return err
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "clear the stored session token",
		Action: func(c *cli.Context) error {
			_, tokens := setup(c)
			if err := tokens.Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out. Run 'domwatch login' to sign in again.")
			return nil
		},
	}
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
