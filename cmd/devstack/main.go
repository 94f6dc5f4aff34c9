package main

import (
	"os"

	"github.com/joshlembergtrimble/genai-training-track/cmd/devstack/cmds"
)

const pythonUnbufferedEnv = "PYTHONUNBUFFERED"

func main() {
	// Keep the children's output unbuffered so redirected logs show up
	// promptly, unless the user wants it otherwise.
	if os.Getenv(pythonUnbufferedEnv) == "" {
		os.Setenv(pythonUnbufferedEnv, "1")
	}
	cmds.New().Execute()
}
