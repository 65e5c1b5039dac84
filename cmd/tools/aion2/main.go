package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kapu/aion2-character-go/cmd/tools/aion2/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	commands.ExecuteContext(ctx)
}
