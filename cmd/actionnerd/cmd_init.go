package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"actionnerd/internal/config"
)

// initCmd writes a starter config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Creates the actionNERD dot directory and writes a default config
file for you to fill in. Refuses to overwrite an existing config.

The API key can also come from the ACTIONNERD_API_KEY, GEMINI_API_KEY
or OPENAI_API_KEY environment variables.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Set provider and api_key there, or export an API key env var.")
	fmt.Println("Then run 'actionnerd --browser-url <devtools-ws-url>' to start the overlay.")
	return nil
}
