package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyweaver/pkg/project"
)

func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the project store",
		Long:  "Manage the project store selected by [store] in the config (memory, file, redis or mongo).",
	}
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storePushCommand())
	cmd.AddCommand(c.storePullCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	return cmd
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			list, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No projects stored")
				return nil
			}
			fmt.Println(projectTable(list))
			return nil
		},
	}
}

func (c *CLI) storePushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push <file>",
		Short: "Store a project or markup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, report, err := c.loadProject(ctx, args[0], "")
			if err != nil {
				return err
			}
			printReport(report)

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Put(ctx, p); err != nil {
				return err
			}
			printSuccess("Stored %s", p.Name)
			printDetail("id: %s", p.ID)
			return nil
		},
		ValidArgsFunction: completeStoryFiles,
	}
}

func (c *CLI) storePullCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "pull <id>",
		Short: "Write a stored project to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = p.ID + ".json"
			}
			if err := project.Save(output, p); err != nil {
				return err
			}
			printSuccess("Pulled %s", p.Name)
			printFile(output)
			return nil
		},
		ValidArgsFunction: c.completeProjectIDs,
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output project file (default <id>.json)")
	return cmd
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted %s", args[0])
			return nil
		},
		ValidArgsFunction: c.completeProjectIDs,
	}
}

// projectTable lays out stored project summaries as a bordered table.
func projectTable(list []project.Summary) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{s.ID, s.Name, fmt.Sprint(s.Scenes), s.UpdatedAt.Local().Format(time.DateTime)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Scenes", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1: // header
				return headerStyle
			case col == 1:
				return StyleValue
			}
			return StyleDim
		}).
		String()
}
