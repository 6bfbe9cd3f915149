package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/projects"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/workflow"
)

var deleteForce bool

// projectsCmd represents the projects command group
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project store commands",
	Long: `Commands for inspecting and maintaining the project store.

Examples:
  # List all projects
  botctl projects list

  # Show one project with its submission history
  botctl projects show 3

  # Delete a project
  botctl projects delete 3 --force

  # Remove all completed projects
  botctl projects purge`,
}

// openStore loads the full project mapping from the backend.
func openStore() (*projects.Store, func() error, error) {
	backend, err := openBackend()
	if err != nil {
		return nil, nil, err
	}
	store := projects.NewStore(backend)
	if err := store.Load(context.Background()); err != nil {
		backend.Close()
		return nil, nil, err
	}
	return store, backend.Close, nil
}

func parseProjectArg(arg string) (int, error) {
	arg = strings.TrimPrefix(strings.TrimPrefix(arg, "P"), "p")
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid project ID %q (want a number or P<id>)", arg)
	}
	return id, nil
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		all := store.List()
		if len(all) == 0 {
			fmt.Println("No projects found.")
			return nil
		}

		fmt.Printf("\n%-6s  %-30s  %-22s  %-12s  %s\n",
			"ID", "NAME", "STATUS", "SUBMISSIONS", "CREATED")
		fmt.Println(strings.Repeat("-", 90))
		for _, p := range all {
			name := p.Name
			if len(name) > 28 {
				name = name[:28] + ".."
			}
			fmt.Printf("P%-5d  %-30s  %-22s  %-12d  %s\n",
				p.ID, name, p.Status(), len(p.Submissions),
				p.CreatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Printf("\nTotal: %d project(s)\n", len(all))
		return nil
	},
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project with its submission history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProjectArg(args[0])
		if err != nil {
			return err
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		p, err := store.Get(id)
		if err != nil {
			return err
		}

		fmt.Println(workflow.StatusText(p, true))
		if len(p.Submissions) > 0 {
			fmt.Println("History:")
			for i, sub := range p.Submissions {
				fmt.Printf("  %d. %s  %-22s  %s  %s\n",
					i+1, sub.ID, sub.Status, sub.Media.Kind,
					sub.UpdatedAt.Format("2006-01-02 15:04"))
				for _, fb := range sub.Feedback {
					fmt.Printf("       feedback: %s\n", fb)
				}
			}
		}
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project and all its submissions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseProjectArg(args[0])
		if err != nil {
			return err
		}

		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		p, err := store.Get(id)
		if err != nil {
			return err
		}

		if !deleteForce {
			fmt.Printf("Delete project %q (P%d) with %d submission(s)? [y/N]: ",
				p.Name, p.ID, len(p.Submissions))
			var answer string
			fmt.Scanln(&answer)
			if !strings.EqualFold(answer, "y") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := store.Delete(context.Background(), id); err != nil {
			return err
		}
		fmt.Printf("Project %q (P%d) deleted.\n", p.Name, p.ID)
		return nil
	},
}

var projectsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove all completed projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		removed, err := store.PurgeCompleted(context.Background())
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			fmt.Println("No completed projects to purge.")
			return nil
		}

		codes := make([]string, len(removed))
		for i, id := range removed {
			codes[i] = fmt.Sprintf("P%d", id)
		}
		fmt.Printf("Purged %d project(s): %s\n", len(removed), strings.Join(codes, ", "))
		return nil
	},
}

var projectsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List submissions awaiting a manager decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		items := workflow.PendingDecisions(store)
		if len(items) == 0 {
			fmt.Println("Nothing awaiting a manager decision.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("P%d (%s)  submission %s  %s\n",
				item.ProjectID, item.ProjectName, item.SubmissionID, item.Status)
		}
		return nil
	},
}

func init() {
	projectsDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip the confirmation prompt")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsShowCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	projectsCmd.AddCommand(projectsPurgeCmd)
	projectsCmd.AddCommand(projectsPendingCmd)

	rootCmd.AddCommand(projectsCmd)
}
