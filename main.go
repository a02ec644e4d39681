package main

import (
	"fmt"
	"os"
	"strings"

	"mingle/service"
)

const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line. It is separate from main so tests
// can stub exit.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("mingle version %s\n", CliVersion)
	case "serve":
		if code := service.Serve(CliVersion); code != 0 {
			exit(code)
		}
	case "db":
		if code := service.HandleCommand(os.Args[2:]); code != 0 {
			exit(code)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: mingle <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve                          Run the HTTP API. Configured through the environment:
                                   PORT, STORE_DRIVER, BADGER_PATH, DATABASE_URL,
                                   TOKEN_SECRET, TOKEN_TTL, LOG_LEVEL, BACKUP_DIR
  db <command>                   Manage the database (init, clean, backup, restore <file>, migrate).
`
	fmt.Println(helpText)
}
