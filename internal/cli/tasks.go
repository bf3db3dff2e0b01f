package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sandeepkv93/tasktag/internal/forms"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/tasklist"
	"github.com/spf13/cobra"
)

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and change tasks",
	}
	cmd.AddCommand(a.tasksListCmd(), a.tasksAddCmd(), a.tasksDoneCmd(), a.tasksDeleteCmd())
	return cmd
}

func (a *app) tasksListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, in-progress first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.close()
			ctx := cmd.Context()
			if _, err := a.signedIn(ctx); err != nil {
				return err
			}
			tasks, err := a.client.ListTasks(ctx)
			if err != nil {
				return apiFailure(err, "Failed to load tasks")
			}
			filter := tasklist.ParseFilter(status)
			out := cmd.OutOrStdout()
			shown := tasklist.Project(tasks, filter)
			if len(shown) == 0 {
				if filter == tasklist.FilterAll {
					fmt.Fprintln(out, "no tasks yet")
				} else {
					fmt.Fprintf(out, "no %s tasks\n", strings.ToLower(filter.Label()))
				}
				return nil
			}
			for _, t := range shown {
				writeTask(out, t)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, pending, in_progress or completed")
	return cmd
}

func writeTask(w io.Writer, t model.Task) {
	line := fmt.Sprintf("#%d [%s] (%s) %s", t.ID, t.Status.Label(), t.Priority.Label(), t.Title)
	if t.DueDate != nil {
		line += " due " + t.DueDate.String()
	}
	if len(t.Tags) > 0 {
		names := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			names = append(names, tag.Name)
		}
		line += " {" + strings.Join(names, ", ") + "}"
	}
	fmt.Fprintln(w, line)
}

func (a *app) tasksAddCmd() *cobra.Command {
	form := forms.TaskForm{Status: string(model.StatusPending)}
	var tagNames []string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			ctx := cmd.Context()
			if _, err := a.signedIn(ctx); err != nil {
				return err
			}
			form.Title = strings.Join(args, " ")
			form.Priority = strings.ToLower(strings.TrimSpace(form.Priority))
			if len(tagNames) > 0 {
				tags, err := a.resolveTags(ctx, tagNames)
				if err != nil {
					return err
				}
				form.Tags = tags
			}
			if err := form.Validate().Err(); err != nil {
				return err
			}
			task, err := form.Task()
			if err != nil {
				return err
			}
			created, err := a.client.CreateTask(ctx, task.Input())
			if err != nil {
				return apiFailure(err, "Failed to create task")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task created successfully")
			writeTask(cmd.OutOrStdout(), created)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.Priority, "priority", "p", string(model.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVar(&form.DueDate, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&form.Description, "description", "d", "", "markdown description")
	cmd.Flags().StringSliceVarP(&tagNames, "tag", "t", nil, "tag name, repeatable")
	return cmd
}

// resolveTags maps names to the user's tags, case-insensitively.
func (a *app) resolveTags(ctx context.Context, names []string) ([]model.Tag, error) {
	all, err := a.client.ListTags(ctx)
	if err != nil {
		return nil, apiFailure(err, "Failed to load tags")
	}
	var out []model.Tag
	for _, name := range names {
		found := false
		for _, tag := range all {
			if strings.EqualFold(tag.Name, strings.TrimSpace(name)) {
				out = model.ToggleTag(out, tag)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no tag named %q", name)
		}
	}
	return out, nil
}

func (a *app) tasksDoneCmd() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed, or pending again with --undo",
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
			task, err := a.client.GetTask(ctx, id)
			if err != nil {
				return apiFailure(err, "Failed to load task")
			}
			updated, err := a.client.SetTaskCompleted(ctx, task, !undo)
			if err != nil {
				return apiFailure(err, "Failed to update task status")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task marked as %s\n", updated.Status.Label())
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "reopen the task instead")
	return cmd
}

func (a *app) tasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
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
			if err := a.client.DeleteTask(ctx, id); err != nil {
				return apiFailure(err, "Failed to delete task")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted successfully")
			return nil
		},
	}
}

// parseID accepts 12 or #12.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
