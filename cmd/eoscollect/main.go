package main

import (
	"context"
	"eoscollect/cmd/eoscollect/commands"
	"eoscollect/pkg/osutil"
)

func main() {
	ctx, cancel := osutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}
