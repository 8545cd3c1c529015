package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelgate/internal/ipc"
)

func newFilterCommand(ctx *commandContext) *cobra.Command {
	filterCmd := &cobra.Command{
		Use:   "filter",
		Short: "Manage filter rules",
	}

	filterCmd.AddCommand(newFilterListCommand(ctx))
	filterCmd.AddCommand(newFilterAddCommand(ctx))
	filterCmd.AddCommand(newFilterUpdateCommand(ctx))
	filterCmd.AddCommand(newFilterToggleCommand(ctx))
	filterCmd.AddCommand(newFilterDeleteCommand(ctx))
	filterCmd.AddCommand(newFilterResetCommand(ctx))

	return filterCmd
}

func newFilterListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List filter rules in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.FilterList()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Rules) == 0 {
					fmt.Fprintln(stdout, "No filter rules")
					return nil
				}
				rows := make([][]string, 0, len(resp.Rules))
				for _, rule := range resp.Rules {
					rows = append(rows, []string{
						rule.ID,
						rule.Type,
						rule.Mode,
						rule.Pattern,
						yesNo(rule.Enabled),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Type", "Mode", "Pattern", "Enabled"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newFilterAddCommand(ctx *commandContext) *cobra.Command {
	var ruleType string
	var mode string
	var pattern string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new filter rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				added, err := client.FilterAdd()
				if err != nil {
					return err
				}
				rule := added.Rule

				update := ipc.FilterUpdateRequest{ID: rule.ID}
				changed := false
				if cmd.Flags().Changed("type") {
					update.Type = &ruleType
					changed = true
				}
				if cmd.Flags().Changed("mode") {
					update.Mode = &mode
					changed = true
				}
				if cmd.Flags().Changed("pattern") {
					update.Pattern = &pattern
					changed = true
				}
				if cmd.Flags().Changed("disabled") {
					enabled := !disabled
					update.Enabled = &enabled
					changed = true
				}

				warning := ""
				if changed {
					updated, err := client.FilterUpdate(update)
					if err != nil {
						return err
					}
					rule = updated.Rule
					warning = updated.Warning
				}

				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Added rule %s (%s %s)\n", rule.ID, rule.Type, rule.Mode)
				if warning != "" {
					fmt.Fprintf(stdout, "Warning: %s\n", warning)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ruleType, "type", "", "Rule type (studio, performer, name, tag)")
	cmd.Flags().StringVar(&mode, "mode", "", "Rule mode (blocklist or allowlist)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Regular expression pattern")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the rule disabled")
	return cmd
}

func newFilterUpdateCommand(ctx *commandContext) *cobra.Command {
	var ruleType string
	var mode string
	var pattern string
	var enabled bool

	cmd := &cobra.Command{
		Use:   "update <rule-id>",
		Short: "Update fields of an existing filter rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := ipc.FilterUpdateRequest{ID: args[0]}
			if cmd.Flags().Changed("type") {
				update.Type = &ruleType
			}
			if cmd.Flags().Changed("mode") {
				update.Mode = &mode
			}
			if cmd.Flags().Changed("pattern") {
				update.Pattern = &pattern
			}
			if cmd.Flags().Changed("enabled") {
				update.Enabled = &enabled
			}
			if update.Type == nil && update.Mode == nil && update.Pattern == nil && update.Enabled == nil {
				return fmt.Errorf("nothing to update; pass at least one of --type, --mode, --pattern, --enabled")
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.FilterUpdate(update)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Updated rule %s\n", resp.Rule.ID)
				if resp.Warning != "" {
					fmt.Fprintf(stdout, "Warning: %s\n", resp.Warning)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&ruleType, "type", "", "Rule type (studio, performer, name, tag)")
	cmd.Flags().StringVar(&mode, "mode", "", "Rule mode (blocklist or allowlist)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "Regular expression pattern")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "Enable or disable the rule")
	return cmd
}

func newFilterToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <rule-id>",
		Short: "Flip a rule between enabled and disabled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.FilterToggle(args[0])
				if err != nil {
					return err
				}
				state := "disabled"
				if resp.Rule.Enabled {
					state = "enabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rule %s is now %s\n", resp.Rule.ID, state)
				return nil
			})
		},
	}
}

func newFilterDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a filter rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.FilterDelete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %s\n", args[0])
				return nil
			})
		},
	}
}

func newFilterResetCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every filter rule",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to delete all rules without --yes")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.FilterReset(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All filter rules deleted")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deleting all rules")
	return cmd
}
