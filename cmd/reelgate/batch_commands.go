package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelgate/internal/ipc"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Manage scene batches",
	}

	batchCmd.AddCommand(newBatchListCommand(ctx))
	batchCmd.AddCommand(newBatchShowCommand(ctx))
	batchCmd.AddCommand(newBatchAddCommand(ctx))
	batchCmd.AddCommand(newBatchAddSceneCommand(ctx))
	batchCmd.AddCommand(newBatchCancelCommand(ctx))
	batchCmd.AddCommand(newBatchClearCommand(ctx))

	return batchCmd
}

func newBatchListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List batches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BatchList()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Batches) == 0 {
					fmt.Fprintln(stdout, "No batches")
					return nil
				}
				fmt.Fprintln(stdout, renderTable(batchTableHeaders(), batchTableRows(resp.Batches), batchTableAlignments()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newBatchShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show every scene in a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BatchList()
				if err != nil {
					return err
				}
				for _, batch := range resp.Batches {
					if batch.ID != args[0] {
						continue
					}
					if asJSON {
						return writeJSON(cmd, batch)
					}
					stdout := cmd.OutOrStdout()
					fmt.Fprintf(stdout, "Batch %s (created %s)\n", batch.ID, batch.CreatedAt)
					rows := make([][]string, 0, len(batch.Scenes))
					for _, scene := range batch.Scenes {
						detail := scene.Error
						if detail == "" && scene.ExternalID != "" {
							detail = "id " + scene.ExternalID
						}
						rows = append(rows, []string{
							scene.StashID,
							scene.Title,
							scene.Status,
							detail,
						})
					}
					fmt.Fprintln(stdout, renderTable(
						[]string{"Scene", "Title", "Status", "Detail"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
					))
					return nil
				}
				return fmt.Errorf("batch %s not found", args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newBatchAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <page-url>",
		Short: "Screen and submit every candidate scene on a catalog page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.BatchAdd(args[0])
				if err != nil {
					return err
				}
				printBatchSubmission(cmd, resp.Batch)
				return nil
			})
		},
	}
}

func newBatchAddSceneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-scene <stash-id>",
		Short: "Screen and submit a single scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SceneAdd(args[0])
				if err != nil {
					return err
				}
				printBatchSubmission(cmd, resp.Batch)
				return nil
			})
		},
	}
}

func newBatchCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <batch-id>",
		Short: "Cancel the remaining scenes of a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.BatchCancel(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled remaining scenes of batch %s\n", args[0])
				return nil
			})
		},
	}
}

func newBatchClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all batch history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to delete batch history without --yes")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.BatchClear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Batch history cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deleting batch history")
	return cmd
}

func printBatchSubmission(cmd *cobra.Command, batch ipc.Batch) {
	stdout := cmd.OutOrStdout()
	summary := batch.Summary
	fmt.Fprintf(stdout, "Batch %s submitted: %d scene(s), %d queued, %d filtered\n",
		batch.ID, summary.Total, summary.Total-summary.Filtered, summary.Filtered)
	for _, scene := range batch.Scenes {
		if scene.Status == "filtered" && scene.Error != "" {
			fmt.Fprintf(stdout, "  filtered %s: %s\n", scene.StashID, scene.Error)
		}
	}
}

func batchTableHeaders() []string {
	return []string{"Batch", "Created", "Total", "Added", "Searched", "Exists", "Filtered", "Errors", "Cancelled"}
}

func batchTableAlignments() []columnAlignment {
	return []columnAlignment{
		alignLeft, alignLeft,
		alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight,
	}
}

func batchTableRows(batches []ipc.Batch) [][]string {
	rows := make([][]string, 0, len(batches))
	for _, batch := range batches {
		summary := batch.Summary
		rows = append(rows, []string{
			batch.ID,
			batch.CreatedAt,
			strconv.Itoa(summary.Total),
			strconv.Itoa(summary.Added),
			strconv.Itoa(summary.Searched),
			strconv.Itoa(summary.Exists),
			strconv.Itoa(summary.Filtered),
			strconv.Itoa(summary.Errors),
			strconv.Itoa(summary.Cancelled),
		})
	}
	return rows
}
