// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the baatcheet command line.
//
// Parse splits argv into a Command and its Args; global flags (--json,
// --quiet, --verbose, --config) may appear anywhere. A Runner executes the
// command against an app.App:
//
//	cmd, args := cli.Parse(os.Args[1:])
//	r := cli.NewRunner(a, cfg, args)
//	if err := r.Run(ctx, cmd, args); err != nil {
//	    cli.DisplayError(os.Stderr, err, args.JSON)
//	    os.Exit(cli.GetExitCode(err))
//	}
//
// # Commands
//
// Account:
//   - login, signup, verify, resend, logout, whoami, password
//   - profile, usage, feedback
//
// Chat:
//   - chat: interactive session with slash commands
//   - ask: one message, reply on stdout
//   - conversations, open, share, upload, image, modes
//
// Workspaces:
//   - projects: create, invite, accept and leave shared projects
//
// Every command supports --json, which prints a JSONResponse envelope.
// Errors map to stable exit codes; see GetExitCode.
package cli
