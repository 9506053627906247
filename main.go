package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/devfury/ezcaretech-auth/internal/bootstrap"
	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/logging"
	"github.com/devfury/ezcaretech-auth/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.Print(os.Stdout)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "server":
		runServer()
	case "login":
		os.Exit(runLogin(args[1:]))
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println(version.Description)
	fmt.Println("\nCommands:")
	fmt.Println("  server    Start the authentication server")
	fmt.Println("  login     Run one login attempt against BizBox and sync the user")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := bootstrap.Run(context.Background(), cfg, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}

// runLogin returns the process exit code: 0 on success, 2 on rejected credentials, 1 otherwise
func runLogin(args []string) int {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "BizBox login id")
	password := fs.String("p", "", "BizBox password (defaults to $EZAUTH_PASSWORD)")
	realm := fs.String("realm", "", "Realm to provision into (defaults to $REALM)")
	_ = fs.Parse(args)

	if *password == "" {
		*password = os.Getenv("EZAUTH_PASSWORD")
	}
	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "login requires -u and -p (or EZAUTH_PASSWORD)")
		fs.Usage()
		return 1
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	out, err := bootstrap.Login(context.Background(), cfg, logger, *realm, *username, *password)
	if err != nil {
		logger.WithError(err).Error("Login could not run")
		return 1
	}

	switch {
	case out.Succeeded():
		fmt.Printf("Login succeeded: %s (id %s, roles %v)\n",
			out.User.Username, out.User.ID, out.User.RoleNames())
		return 0
	case out.Response != nil:
		fmt.Printf("Login failed (%s): HTTP %d %s\n", out.Error, out.Response.Status, out.Response.Body)
		return 2
	default:
		fmt.Printf("Login failed: %s\n", out.Error)
		return 1
	}
}
