package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cliadapter "github.com/example/nudge/internal/adapters/cli"
	"github.com/example/nudge/internal/ports/primary"
)

// TaskCmd returns the task command.
func TaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tracked tasks",
		Long:  "Create, inspect and escalate tasks tracked by the nudge service",
	}

	cmd.AddCommand(taskCreateCmd())
	cmd.AddCommand(taskShowCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskNudgeCmd())

	return cmd
}

// taskAdapter wires a container and returns a presenter on stdout.
func taskAdapter(cmd *cobra.Command) (*cliadapter.TaskAdapter, func(), error) {
	container, err := buildContainer(cmd, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}
	adapter := cliadapter.NewTaskAdapter(
		container.TaskService, container.EscalationService, os.Stdout)
	return adapter, func() { container.Close() }, nil
}

func taskCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new task",
		Long: `Create a task: announce it in the channel and register its reminder
and escalation triggers.

Examples:
  nudge task create "Ship the quarterly report" --due 2026-01-20T19:00 --targets "shao, maria"
  nudge task create "Rotate the keys" --due 2026-01-20T19:00 --targets "!channel" --policy 2d,4h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, _ := cmd.Flags().GetString("due")
			targets, _ := cmd.Flags().GetString("targets")
			description, _ := cmd.Flags().GetString("description")
			comment, _ := cmd.Flags().GetString("comment")
			link, _ := cmd.Flags().GetString("link")
			estimate, _ := cmd.Flags().GetFloat64("estimate")
			policySpec, _ := cmd.Flags().GetString("policy")

			policy, err := parsePolicy(policySpec)
			if err != nil {
				return err
			}

			adapter, cleanup, err := taskAdapter(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return adapter.Create(context.Background(), primary.CreateTaskRequest{
				Title:                  args[0],
				Description:            description,
				DueDate:                due,
				Targets:                targets,
				EstimatedDurationHours: estimate,
				Comment:                comment,
				Link:                   link,
				Policy:                 policy,
			})
		},
	}

	cmd.Flags().String("due", "", "due time, e.g. 2026-01-20T19:00 (required)")
	cmd.Flags().String("targets", "", "comma-separated recipients (required)")
	cmd.Flags().String("description", "", "task description")
	cmd.Flags().String("comment", "", "extra comment appended to the announcement")
	cmd.Flags().String("link", "", "reference link appended to the announcement")
	cmd.Flags().Float64("estimate", 0, "estimated duration in hours, anchors the final check")
	cmd.Flags().String("policy", "", "custom reminder offsets, e.g. 2d,4h,30m")
	cmd.MarkFlagRequired("due")
	cmd.MarkFlagRequired("targets")
	addConfigFlag(cmd)

	return cmd
}

func taskShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [task-id]",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, cleanup, err := taskAdapter(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return adapter.Show(context.Background(), args[0])
		},
	}

	addConfigFlag(cmd)
	return cmd
}

func taskListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unexpired tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, cleanup, err := taskAdapter(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return adapter.List(context.Background())
		},
	}

	addConfigFlag(cmd)
	return cmd
}

func taskNudgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nudge [task-id]",
		Short: "Escalate a task to unacknowledged assignees now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, cleanup, err := taskAdapter(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return adapter.Nudge(context.Background(), args[0])
		},
	}

	addConfigFlag(cmd)
	return cmd
}

// parsePolicy parses "2d,4h,30m" style offset lists.
func parsePolicy(spec string) ([]primary.PolicyOffset, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	units := map[byte]string{'m': "minutes", 'h': "hours", 'd': "days", 'w': "weeks"}

	var policy []primary.PolicyOffset
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if len(part) < 2 {
			return nil, fmt.Errorf("invalid policy offset %q", part)
		}

		unit, ok := units[part[len(part)-1]]
		if !ok {
			return nil, fmt.Errorf("invalid policy unit in %q (expected m, h, d or w)", part)
		}
		amount, err := strconv.Atoi(part[:len(part)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid policy amount in %q", part)
		}

		policy = append(policy, primary.PolicyOffset{Amount: amount, Unit: unit})
	}
	return policy, nil
}
