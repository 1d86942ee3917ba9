// Copyright 2025 The DocServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the docserve autocomplete service and its debug CLI.

docserve answers autocomplete interactions for a documentation bot: docs and
docsdev from generated docs JSON, tag from a local tag file, guide,
discorddocs and dtypes from Algolia indexes, and mdn from a snapshot of the MDN
reference index.

# Usage

Serve signed interactions over HTTP:

	docserve serve --addr :8080

Serve msgpack frames over stdin/stdout for a parent process:

	docserve ipc

Try a single query, or start the interactive debug loop without arguments:

	docserve query dtypes version=v10 Client
	docserve query

Convert a JSON MDN index to the faster msgpack snapshot:

	docserve snapshot mdn.json mdn.msgpack

# Configuration

Runtime configuration lives in docserve.toml in the user config dir, created
with defaults on first run:

	[server]
	addr = ":8080"
	request_timeout_ms = 2500

	[docs]
	default_source = "v14"
	dev_source = "main"

	[docs.sources]
	v14 = "https://raw.githubusercontent.com/discordjs/docs/main/discord.js/14.x.json"

	[search.guide]
	index = "discordjs"

Algolia credentials and the interaction public key are read from a .env file
and the environment (DJS_GUIDE_ALGOLIA_APP, DJS_GUIDE_ALGOLIA_KEY,
DDOCS_ALGOLIA_APP, DDOCS_ALGOLIA_KEY, DTYPES_ALGOLIA_APP, DTYPES_ALGOLIA_KEY,
DISCORD_PUBLIC_KEY). Sending SIGHUP to a running server reloads the tag file
and MDN index.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const (
	Version = "0.3.0"
	AppName = "docserve"
	gh      = "https://github.com/bastiangx/docserve"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}
