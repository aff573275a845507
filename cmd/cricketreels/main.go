package main

import (
	"context"
	"log"
	"os"

	"github.com/cricketreels/backend/internal/app"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"serve"}
	}

	if err := app.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}
