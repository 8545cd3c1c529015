package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelgate/internal/ipc"
)

func newSceneCommand(ctx *commandContext) *cobra.Command {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "Operate on individual scenes within batches",
	}

	sceneCmd.AddCommand(newSceneRetryCommand(ctx))
	sceneCmd.AddCommand(newSceneRetryAllCommand(ctx))
	sceneCmd.AddCommand(newSceneUndoCommand(ctx))

	return sceneCmd
}

func newSceneRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <batch-id> <stash-id>",
		Short: "Resubmit a failed scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SceneRetry(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued scene %s for retry\n", args[1])
				return nil
			})
		},
	}
}

func newSceneRetryAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry-all",
		Short: "Resubmit every failed scene across all batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RetryAll()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Queued == 0 {
					fmt.Fprintln(stdout, "No failed scenes to retry")
					return nil
				}
				fmt.Fprintf(stdout, "Queued %d scene(s) for retry\n", resp.Queued)
				return nil
			})
		},
	}
}

func newSceneUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <batch-id> <stash-id>",
		Short: "Remove a previously added scene from the media server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SceneUndo(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed scene %s\n", args[1])
				return nil
			})
		},
	}
}
