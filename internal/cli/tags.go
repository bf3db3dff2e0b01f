package cli

import (
	"fmt"

	"github.com/sandeepkv93/tasktag/internal/color"
	"github.com/sandeepkv93/tasktag/internal/forms"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
	"github.com/spf13/cobra"
)

func (a *app) tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "List and change tags",
	}
	cmd.AddCommand(a.tagsListCmd(), a.tagsAddCmd(), a.tagsDeleteCmd())
	return cmd
}

func (a *app) tagsListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tags with how many tasks use each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			ctx := cmd.Context()
			if _, err := a.signedIn(ctx); err != nil {
				return err
			}
			tags, err := a.client.ListTags(ctx)
			if err != nil {
				return apiFailure(err, "Failed to load tags")
			}
			tasks, err := a.client.ListTasks(ctx)
			if err != nil {
				return apiFailure(err, "Failed to load tasks")
			}
			shown := tasklist.SearchTags(tags, search)
			out := cmd.OutOrStdout()
			if len(shown) == 0 {
				fmt.Fprintln(out, "no tags")
				return nil
			}
			counts := tasklist.TagCounts(tasks, shown)
			for _, tag := range shown {
				noun := "tasks"
				if counts[tag.ID] == 1 {
					noun = "task"
				}
				fmt.Fprintf(out, "#%d %s %s %d %s\n", tag.ID, tag.Name, color.Safe(tag.Color), counts[tag.ID], noun)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	return cmd
}

func (a *app) tagsAddCmd() *cobra.Command {
	var form forms.TagForm
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Name = args[0]
			if err := form.Validate().Err(); err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			if _, err := a.signedIn(ctx); err != nil {
				return err
			}
			tag, err := a.client.CreateTag(ctx, form.Payload())
			if err != nil {
				return apiFailure(err, "Failed to create tag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tag created successfully: #%d %s %s\n", tag.ID, tag.Name, color.Safe(tag.Color))
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Color, "color", "c", color.Fallback, "hex color such as #0EA5E9 or abc")
	return cmd
}

func (a *app) tagsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()
			if _, err := a.signedIn(ctx); err != nil {
				return err
			}
			if err := a.client.DeleteTag(ctx, id); err != nil {
				return apiFailure(err, "Failed to delete tag")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tag deleted successfully")
			return nil
		},
	}
}
