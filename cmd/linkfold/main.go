package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MrSnakeDoc/linkfold/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ linkfold: %v\n", err)
		os.Exit(1)
	}
}
