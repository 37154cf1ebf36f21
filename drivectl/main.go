// Command drivectl manages the files of a Google Drive folder from the command line.
//
//	drivectl --token "$(gcloud auth print-access-token)" --folder <folder id> ls
//	drivectl put ~/reports/q3.pdf --name "Q3 report.pdf"
//	drivectl get <file id> ~/Downloads/q3.pdf
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := newApp(ctx, newGateway).Run(os.Args)
	stop()
	if err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "drivectl: %v\n", err)
		os.Exit(1)
	}
}
