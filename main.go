// authvault - A local credential store with per-account password
// policies and an attempt-limited login console.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/jeranaias/authvault/internal/audit"
	"github.com/jeranaias/authvault/internal/auth"
	"github.com/jeranaias/authvault/internal/cli"
	"github.com/jeranaias/authvault/internal/config"
	"github.com/jeranaias/authvault/internal/store"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("authvault %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown argument: %s\n", os.Args[1])
			printUsage()
			os.Exit(cli.ExitUsageError)
		}
	}

	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitConfigError
	}
	if err := config.EnsureConfigDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitConfigError
	}

	storePath, err := cfg.StorePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitConfigError
	}
	vault := store.Open(storePath)

	auditLog := audit.Disabled()
	if cfg.Security.AuditEnabled {
		logPath, err := cfg.AuditLogPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return cli.ExitConfigError
		}
		auditLog, err = audit.New(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not open audit log: %v\n", err)
			return cli.ExitGeneralError
		}
		auditLog.SetMaxSize(cfg.Security.AuditMaxSizeMB * 1024 * 1024)
		defer auditLog.Close()
	}

	engine := auth.NewEngine(vault,
		auth.WithAudit(auditLog),
		auth.WithMaxAttempts(cfg.Security.MaxLoginAttempts),
	)
	admin := auth.NewAdmin(vault, auditLog)

	console := cli.NewConsole(cfg, engine, admin)
	defer console.Close()
	return console.Run()
}

func printUsage() {
	fmt.Println("Usage: authvault [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none)     Start the interactive console")
	fmt.Println("  version    Print version information")
	fmt.Println("  help       Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  AUTHVAULT_STORE         Credential file path")
	fmt.Println("  AUTHVAULT_MAX_ATTEMPTS  Failed logins before lockout")
	fmt.Println("  AUTHVAULT_AUDIT         Set to 0 to disable audit logging")
	fmt.Println("  AUTHVAULT_AUDIT_KEY     HMAC key for signed audit lines")
	fmt.Println("  NO_COLOR                Disable styled output")
}
