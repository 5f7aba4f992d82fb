// term-ai turns natural-language requests into shell commands using a
// local Ollama model, optionally consulting a web-search provider via
// tool calling.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Best effort; most installs have no .env file.
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
