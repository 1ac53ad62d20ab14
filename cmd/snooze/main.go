package main

import (
	"log"

	"github.com/MrSnakeDoc/snooze/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ snooze failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ snooze stopped with error: %v", err)
	}
}
