package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridsnake/internal/registry"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List all registered agents",
	Long:  `Shows the policies available to 'snake run'.`,
	Args:  cobra.NoArgs,
	Run:   runAgents,
}

func runAgents(_ *cobra.Command, _ []string) {
	agents := registry.List()

	if len(agents) == 0 {
		fmt.Println("No agents available.")
		return
	}

	fmt.Println("Available agents:")
	fmt.Println()

	maxNameLen := 4 // "Name" header
	for _, a := range agents {
		if len(a.Name) > maxNameLen {
			maxNameLen = len(a.Name)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxNameLen, "Name", "Description")
	fmt.Printf("  %-*s  %s\n", maxNameLen, "----", "-----------")

	for _, a := range agents {
		fmt.Printf("  %-*s  %s\n", maxNameLen, a.Name, a.Description)
	}

	fmt.Println()
	fmt.Println("Run 'snake run --agent <name>' to evaluate one.")
}
