package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/logging"
	"github.com/matheus3301/wppclone/internal/session"
)

func main() {
	os.Exit(cli())
}

// cli runs wppctl and returns the process exit code, so deferred cleanup
// such as flushing the log happens before exit.
func cli() int {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	urlFlag := flag.String("url", "", "backend URL (overrides config and WPP_API_URL)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		return 1
	}

	cfg, err := config.LoadOrEmpty(session.ConfigPath())
	if err != nil {
		return fail("load config", err)
	}
	sessionName := session.Resolve(*sessionFlag, cfg)
	if err := session.ValidateName(sessionName); err != nil {
		return fail("session", err)
	}
	if err := config.LoadDotEnv(".env", session.EnvPath(sessionName)); err != nil {
		return fail("dotenv", err)
	}
	getenv := os.Getenv
	if *urlFlag != "" {
		getenv = func(key string) string {
			if key == config.EnvAPIURL {
				return *urlFlag
			}
			return os.Getenv(key)
		}
	}
	settings, err := cfg.Resolve(sessionName, getenv)
	if err != nil {
		return fail("config", err)
	}

	logger, err := logging.New(session.LogPath(sessionName, "wppctl"), sessionName, false)
	if err != nil {
		return fail("init logger", err)
	}
	defer func() { _ = logger.Sync() }()

	c, err := api.New(settings.APIURL, api.WithTimeout(settings.RequestTimeout))
	if err != nil {
		return fail("api client", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), settings.RequestTimeout)
	defer cancel()

	out := &printer{w: os.Stdout, json: *jsonFlag, selfID: settings.SelfID}
	if err := run(ctx, c, out, args); err != nil {
		logger.Warn("command failed", zap.Strings("args", args), zap.Error(err))
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintln(os.Stderr, usage.Error())
			return 1
		}
		return fail(args[0], err)
	}
	logger.Info("command done", zap.String("command", args[0]))
	return 0
}

type usageError string

func (e usageError) Error() string { return "usage: wppctl " + string(e) }

// run executes one command against the backend.
func run(ctx context.Context, c *api.Client, out *printer, args []string) error {
	switch args[0] {
	case "conversations", "ls":
		convs, err := c.ListConversations(ctx)
		if err != nil {
			return err
		}
		return out.conversations(convs)
	case "messages":
		if len(args) != 2 {
			return usageError("messages <wa_id>")
		}
		msgs, err := c.ListMessages(ctx, args[1])
		if err != nil {
			return err
		}
		return out.messages(msgs)
	case "send":
		if len(args) < 3 {
			return usageError("send <wa_id> <text>")
		}
		text := strings.Join(args[2:], " ")
		if strings.TrimSpace(text) == "" {
			return usageError("send <wa_id> <text>")
		}
		msg, err := c.SendMessage(ctx, args[1], text)
		if err != nil {
			return err
		}
		return out.sent(msg)
	case "delete", "rm":
		if len(args) != 2 {
			return usageError("delete <id>")
		}
		if err := c.DeleteMessage(ctx, args[1]); err != nil {
			return err
		}
		return out.deleted(args[1])
	default:
		return usageError(fmt.Sprintf("%s: unknown command (try conversations, messages, send, delete)", args[0]))
	}
}

func fail(what string, err error) int {
	reportError(os.Stderr, what, err)
	return 1
}

// reportError writes a one-line error, showing the backend's answer for
// non-2xx responses.
func reportError(w io.Writer, what string, err error) {
	red := color.New(color.FgRed)
	var se *api.StatusError
	if errors.As(err, &se) {
		red.Fprintf(w, "Error: %s: backend answered %d %s\n", what, se.Code, strings.TrimSpace(se.Body))
		return
	}
	red.Fprintf(w, "Error: %s: %v\n", what, err)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: wppctl [--session <name>] [--url <api>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  conversations            List conversations")
	fmt.Fprintln(os.Stderr, "  messages <wa_id>         List messages of a conversation")
	fmt.Fprintln(os.Stderr, "  send <wa_id> <text>      Send a message")
	fmt.Fprintln(os.Stderr, "  delete <id>              Delete a message")
}
