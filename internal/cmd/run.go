package cmd

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/resdevops/maintenance-proxy/internal/server"
)

type runCommand struct {
	cmd              *cobra.Command
	debugLogsEnabled bool
	logFile          lumberjack.Logger
}

func newRunCommand() *runCommand {
	runCommand := &runCommand{}
	runCommand.cmd = &cobra.Command{
		Use:   "run",
		Short: "Run the server",
		RunE:  runCommand.run,
		Args:  cobra.NoArgs,
	}

	runCommand.cmd.Flags().BoolVar(&runCommand.debugLogsEnabled, "debug", false, "Include debugging logs")
	runCommand.cmd.Flags().StringVar(&runCommand.logFile.Filename, "log-file", "", "Also write logs to this file, rotating it as it grows")
	runCommand.cmd.Flags().IntVar(&runCommand.logFile.MaxSize, "log-max-size", 100, "Size in megabytes at which the log file is rotated")
	runCommand.cmd.Flags().IntVar(&runCommand.logFile.MaxBackups, "log-max-backups", 5, "Number of rotated log files to keep")
	runCommand.cmd.Flags().IntVar(&runCommand.logFile.MaxAge, "log-max-age", 28, "Days to keep rotated log files")

	return runCommand
}

func (c *runCommand) run(cmd *cobra.Command, args []string) error {
	c.setLogger()
	defer c.logFile.Close()

	config, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	s, err := server.NewServer(config)
	if err != nil {
		return err
	}

	err = s.Start()
	if err != nil {
		return err
	}
	defer s.Stop()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	<-ch

	return nil
}

func (c *runCommand) setLogger() {
	level := slog.LevelInfo
	if c.debugLogsEnabled {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if c.logFile.Filename != "" {
		c.logFile.Compress = true
		out = io.MultiWriter(os.Stdout, &c.logFile)
	}

	slog.SetDefault(server.CreateECSLogger(level, out))
}
