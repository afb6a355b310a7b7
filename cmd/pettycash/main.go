/*
main.go - Application entry point

PURPOSE:
  Starts the petty cash ledger CLI. All wiring lives in the cli package.

COMMANDS:
  pettycash            interactive menu (same as "pettycash shell")
  pettycash demo       scripted walkthrough with the demo users

FLAGS:
  --config     config file (yaml, json or toml)
  --store      memory | sqlite (both in-memory, nothing survives exit)
  --log-level  debug | info | warn | error

ENVIRONMENT:
  PETTYCASH_STORE, PETTYCASH_LOG_LEVEL, PETTYCASH_LOG_DEVELOPMENT,
  PETTYCASH_LOG_FILE, PETTYCASH_SEED_DEMO_USERS, PETTYCASH_BCRYPT_COST,
  PETTYCASH_RECONCILE_INTERVAL. A .env file in the working directory is
  loaded first.

SHUTDOWN:
  SIGINT/SIGTERM cancel the command context: the balance monitor stops and
  the repository is closed before exit.

SEE ALSO:
  - cli/root.go: Command tree and wiring
  - config/config.go: Settings
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/pettycash/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
