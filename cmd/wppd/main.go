package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/daemon"
	"github.com/matheus3301/wppclone/internal/lock"
	"github.com/matheus3301/wppclone/internal/receipts"
	"github.com/matheus3301/wppclone/internal/session"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	addrFlag := flag.String("addr", daemon.DefaultAddr, "listen address")
	dataDirFlag := flag.String("data-dir", "", "database directory (default ~/.wpp/sessions/<name>/backend)")
	selfFlag := flag.String("self-id", config.DefaultSelfID, "sender id of outgoing messages")
	delayFlag := flag.Duration("receipt-delay", receipts.DefaultDelay, "time an own message spends in each delivery status")
	flag.Parse()

	cfg, err := config.LoadOrEmpty(session.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}
	sessionName := session.Resolve(*sessionFlag, cfg)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	p := daemon.Params{
		SessionName:  sessionName,
		DataDir:      *dataDirFlag,
		Addr:         *addrFlag,
		SelfID:       *selfFlag,
		ReceiptDelay: *delayFlag,
		Stderr:       true,
	}

	if flag.Arg(0) == "status" {
		os.Exit(printStatus(p))
	}

	app := fx.New(
		daemon.Module(p),
	)
	app.Run()
}

// printStatus reports whether a backend holds the data dir of p.
func printStatus(p daemon.Params) int {
	dir := p.DataDir
	if dir == "" {
		dir = session.BackendDir(p.SessionName)
	}
	h, err := lock.ReadHolder(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if h == nil {
		fmt.Printf("Session: %s\nStatus:  stopped\n", p.SessionName)
		return 3
	}
	fmt.Printf("Session: %s\nStatus:  running\nPID:     %d\n", p.SessionName, h.PID)
	if h.Addr != "" {
		fmt.Printf("Address: http://%s\n", h.Addr)
	}
	if !h.Since.IsZero() {
		fmt.Printf("Uptime:  %s\n", time.Since(h.Since).Round(time.Second))
	}
	return 0
}
