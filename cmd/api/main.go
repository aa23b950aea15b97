package main

import (
	"fmt"
	"os"

	"github.com/metinatakli/ticket-booking-system/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
