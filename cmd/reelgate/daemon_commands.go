package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelgate/internal/daemonctl"
	"reelgate/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the reelgate daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				if result.Launched {
					fmt.Fprintln(stdout, "Daemon not running, launching...")
				}
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the reelgate daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.Stop(ctx.socketPath(), daemonLogDir(ctx), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.Terminated && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the reelgate daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Stop(ctx.socketPath(), daemonLogDir(ctx), 5*time.Second)
			if err != nil && !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				return err
			}
			if err == nil {
				if result.Terminated && result.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			if _, err := daemonctl.EnsureStarted(ctx.socketPath(), exe, daemonLaunchOptions(ctx), 10*time.Second); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon restarted")
			return nil
		},
	}

	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and batch status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				statusResp, err := client.Status()
				if err != nil {
					return fmt.Errorf("query daemon status: %w", err)
				}
				batchResp, err := client.BatchList()
				if err != nil {
					return fmt.Errorf("list batches: %w", err)
				}

				if statusJSON {
					return writeJSON(cmd, map[string]any{
						"status":  statusResp,
						"batches": batchResp.Batches,
					})
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, line := range daemonStatusLines(statusResp, colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Batches", colorize) {
					fmt.Fprintln(stdout, line)
				}
				if len(batchResp.Batches) == 0 {
					fmt.Fprintln(stdout, "No batches")
					return nil
				}
				fmt.Fprintln(stdout, renderTable(batchTableHeaders(), batchTableRows(batchResp.Batches), batchTableAlignments()))
				return nil
			})
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Emit machine-readable JSON")

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func daemonStatusLines(status *ipc.StatusResponse, colorize bool) []string {
	if status == nil {
		return []string{renderStatusLine("Daemon", statusError, "no status available", colorize)}
	}

	lines := make([]string, 0, 5)
	if status.Running {
		lines = append(lines, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", status.PID), colorize))
	} else {
		lines = append(lines, renderStatusLine("Daemon", statusError, "not running", colorize))
	}
	lines = append(lines, renderStatusLine("Data directory", statusInfo, status.DataDir, colorize))
	lines = append(lines, renderStatusLine("Filter rules", statusInfo, strconv.Itoa(status.RuleCount), colorize))
	lines = append(lines, renderStatusLine("Batches", statusInfo, strconv.Itoa(status.BatchCount), colorize))
	if status.ErrorScenes > 0 {
		lines = append(lines, renderStatusLine("Error scenes", statusWarn,
			fmt.Sprintf("%d (run `reelgate scene retry-all`)", status.ErrorScenes), colorize))
	} else {
		lines = append(lines, renderStatusLine("Error scenes", statusOK, "0", colorize))
	}
	return lines
}

func daemonLogDir(ctx *commandContext) string {
	if cfg := ctx.configValue(); cfg != nil {
		return cfg.Paths.LogDir
	}
	return ""
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := *ctx.socketFlag; socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := *ctx.configFlag; config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
