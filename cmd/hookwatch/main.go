package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattjoyce/hookwatch/internal/api"
	"github.com/mattjoyce/hookwatch/internal/config"
	"github.com/mattjoyce/hookwatch/internal/ledger"
	"github.com/mattjoyce/hookwatch/internal/lock"
	"github.com/mattjoyce/hookwatch/internal/log"
	"github.com/mattjoyce/hookwatch/internal/tui/watch"
	"github.com/mattjoyce/hookwatch/internal/webhook"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		os.Exit(runStart(args))
	case "watch":
		os.Exit(runWatch(args))
	case "sign":
		os.Exit(runSign(args, os.Stdin))
	case "config":
		os.Exit(runConfigNoun(args))
	case "version":
		fmt.Printf("hookwatch version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(os.Stderr)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `hookwatch - Instagram / Facebook webhook receiver and inspector

Usage:
  hookwatch <command> [flags]

Commands:
  start            Run the webhook receiver and dashboard
                   [--config FILE] [--listen ADDR] [--log-level L] [--pid-file F]
  watch            Live terminal view of a running receiver
  sign             Print the X-Hub-Signature-256 value for a payload
  config check     Validate configuration
  config show      Print effective configuration (secrets masked)
  version          Show version information
  help             Show this help message

Environment:
  VERIFY_TOKEN     Handshake token (default my_verify_token_12345)
  APP_SECRET       HMAC secret; empty disables signature checking
  PORT             Listen on 0.0.0.0:$PORT
  LOG_LEVEL        debug, info, warn, error

A .env file in the working directory is loaded when present.
`)
}

// loadConfig loads .env and then the configuration.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.Load(path)
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML configuration file")
	listen := fs.String("listen", "", "Listen address (overrides config)")
	logLevel := fs.String("log-level", "", "Log level (overrides config)")
	pidFile := fs.String("pid-file", "", "Refuse to start if this PID file is held")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log.Setup(cfg.Log.Level, cfg.Log.Format)
	logger := log.WithComponent("main")

	if *pidFile != "" {
		pid, err := lock.Acquire(*pidFile)
		if err != nil {
			logger.Error("failed to acquire pid file", "path", *pidFile, "error", err)
			return 1
		}
		defer func() { _ = pid.Release() }()
	}
	logger.Info("hookwatch starting", "version", version, "listen", cfg.Server.Listen)

	flags := cfg.Flags()
	if !flags.AppSecretSet {
		logger.Warn("APP_SECRET not set, signature verification disabled")
	}
	if !flags.VerifyTokenSet {
		logger.Warn("VERIFY_TOKEN is empty; handshakes sending an empty hub.verify_token will pass")
	} else if cfg.Webhook.VerifyToken == config.DefaultVerifyToken {
		logger.Warn("using default verify token; set VERIFY_TOKEN")
	}

	// The ledger lives exactly as long as the server.
	l := ledger.New(cfg.Ledger.Capacity)

	wh := webhook.New(webhook.Config{
		VerifyToken: cfg.Webhook.VerifyToken,
		AppSecret:   cfg.Webhook.AppSecret,
		MaxBodySize: cfg.MaxBodyBytes(),
	}, l, log.WithComponent("webhook"))

	server := api.New(api.Config{
		Listen:         cfg.Server.Listen,
		PublicURL:      cfg.Server.PublicURL,
		DashboardLimit: cfg.Server.DashboardLimit,
		VerifyToken:    cfg.Webhook.VerifyToken,
		Flags:          flags,
	}, l, wh, log.WithComponent("api"))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server failed", "error", err)
		return 1
	}

	logger.Info("hookwatch stopped", "webhooks_total", l.Total())
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	url := fs.String("url", "http://127.0.0.1:5000", "Base URL of a running hookwatch")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := watch.Run(strings.TrimRight(*url, "/")); err != nil {
		fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
		return 1
	}
	return 0
}

func runSign(args []string, stdin io.Reader) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	secret := fs.String("secret", os.Getenv(config.EnvAppSecret), "HMAC secret (default $APP_SECRET)")
	file := fs.String("file", "", "Payload file (default stdin)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "sign: --secret or APP_SECRET is required")
		return 1
	}

	var (
		payload []byte
		err     error
	)
	if *file != "" {
		payload, err = os.ReadFile(*file)
	} else {
		payload, err = io.ReadAll(stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign: read payload: %v\n", err)
		return 1
	}

	// Signed bytes are exactly what was read; no trimming.
	fmt.Println(webhook.SignatureHeaderValue(webhook.Sign(payload, *secret)))
	return 0
}

func runConfigNoun(args []string) int {
	if len(args) < 1 || isHelpToken(args[0]) {
		fmt.Println("Usage: hookwatch config <check|show> [--config FILE]")
		if len(args) < 1 {
			return 1
		}
		return 0
	}

	fs := flag.NewFlagSet("config "+args[0], flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML configuration file")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch args[0] {
	case "check":
		if _, err := loadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
			return 1
		}
		fmt.Println("Configuration valid")
		return 0
	case "show":
		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 1
		}
		out, err := config.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render config: %v\n", err)
			return 1
		}
		fmt.Print(string(out))
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", args[0])
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}
