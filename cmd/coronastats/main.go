package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/backyonatan-alt/coronastats/cmd/coronastats/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	commands.ExecuteContext(ctx)
}
