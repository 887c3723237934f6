// Command jsonreq describes and invokes the registered callables.
//
//	jsonreq describe
//	jsonreq call '[200]'
//	jsonreq call '{"x": 200}'
//	echo '{"jsonrpc":"2.0","method":"test_request","params":[200],"id":1}' | jsonreq rpc
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mnehpets/jsonreq/cli"
)

var version = "0.1.0" // overridden with -ldflags "-X main.version=..."

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, version)
	stop()
	os.Exit(code)
}
