// Command leadsctl is a command line client for the Leads CRM API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leadscrm/leads.go/contrib/leadsctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := leadsctl.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
