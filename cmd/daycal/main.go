package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sandeepkv93/daycal/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "daycal failed: %v\n", err)
		os.Exit(1)
	}
}
