package main

import (
	"os"

	"chat-capture/backend/internal/app"
)

func main() {
	os.Exit(app.Run())
}
