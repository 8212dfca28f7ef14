package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printFn and printlnFn are test seams for REPL output.
var (
	printFn   = fmt.Print
	printlnFn = fmt.Println
)

// execIface is the command surface the REPL drives. App implements it.
type execIface interface {
	isLoggedIn() bool
	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	List(ctx context.Context) error
	AddNote(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	WhoAmI(ctx context.Context) error
	SignOut(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// It returns on "exit", "quit" or end of input.
//
//	Signed out:
//	  - help             show available commands
//	  - signin           sign in with an emailed code
//	  - signup           create an account with an emailed code
//	  - exit | quit      leave the program
//
//	Signed in:
//	  - help             show available commands
//	  - list | l         list notes
//	  - add              add a note
//	  - delete <id>      delete a note
//	  - whoami           show the signed-in user
//	  - signout          sign out
//	  - exit | quit      leave the program
//
// Handler errors are not printed here; handlers report to the user and log
// on their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("notes %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}
		eof := err != nil

		parts := strings.Fields(line)
		if len(parts) == 0 {
			if eof {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, delete <id>, whoami, signout, exit")
			} else {
				printlnFn("Available commands: signin, signup, exit")
			}

		case "signin", "signup":
			if a.isLoggedIn() {
				printlnFn("Already signed in. Type 'signout' first.")
				break
			}
			if cmd == "signin" {
				_ = a.SignIn(ctx)
			} else {
				_ = a.SignUp(ctx)
			}

		case "l", "list", "add", "delete", "whoami", "signout":
			if !a.isLoggedIn() {
				printlnFn(signInHint)
				break
			}
			switch cmd {
			case "l", "list":
				_ = a.List(ctx)
			case "add":
				_ = a.AddNote(ctx)
			case "delete":
				if len(args) == 0 {
					printlnFn("Usage: delete <id>")
					break
				}
				_ = a.Delete(ctx, args[0])
			case "whoami":
				_ = a.WhoAmI(ctx)
			case "signout":
				_ = a.SignOut(ctx)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if eof {
			return
		}
	}
}
