package main

import (
	"context"
	"os"

	"ploscaru/internal/app"
)

func main() {
	os.Exit(app.Run(context.Background(), os.Args[1:], os.Stderr))
}
