// Command formdesk runs the form service and edits form layouts from the
// command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/G-Node/formdesk/formdesk"
	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/G-Node/formdesk/formdesk/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// options are the global flags. Flags that are set override the
// environment.
type options struct {
	envfile  string
	driver   string
	database string
}

func newRootCmd() *cobra.Command {
	opts := new(options)
	rootCmd := &cobra.Command{
		Use:           "formdesk",
		Short:         "Dynamic form definitions, layouts and submissions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.envfile, "env", "", "env file to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&opts.driver, "db-driver", "", "database driver (sqlite3 or postgres)")
	rootCmd.PersistentFlags().StringVar(&opts.database, "db", "", "database path or connection string")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSeedCmd(opts))
	rootCmd.AddCommand(newFormsCmd(opts))
	rootCmd.AddCommand(newLayoutCmd(opts))
	return rootCmd
}

func (opts *options) config(cmd *cobra.Command) (formdesk.Config, error) {
	var envfiles []string
	if opts.envfile != "" {
		envfiles = append(envfiles, opts.envfile)
	}
	cfg, err := formdesk.LoadConfig(envfiles...)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("db-driver") {
		cfg.DBDriver = opts.driver
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.database
	}
	return cfg, cfg.Validate()
}

// open connects to the configured database for the commands that work on
// the store directly. Logs go to stderr; stdout carries the command output.
func (opts *options) open(cmd *cobra.Command) (*db.Connection, error) {
	cfg, err := opts.config(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{File: cfg.LogFile, Debug: cfg.Debug, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}
	return db.Open(cfg.DBDriver, cfg.DBPath, log)
}

func newServeCmd(opts *options) *cobra.Command {
	var (
		port    uint16
		jsonLog bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web service until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			log, err := logger.New(logger.Config{File: cfg.LogFile, Debug: cfg.Debug, JSON: jsonLog})
			if err != nil {
				return err
			}
			srv, err := formdesk.NewService(cfg, log)
			if err != nil {
				return err
			}
			if err := srv.Start(); err != nil {
				return err
			}
			srv.WaitForInterrupt()
			srv.Stop()
			return nil
		},
	}
	cmd.Flags().Uint16Var(&port, "port", 3000, "port to listen on")
	cmd.Flags().BoolVar(&jsonLog, "json-log", false, "write logs as JSON")
	return cmd
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the sample purchase request form",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			f, err := formdesk.SeedPurchaseRequest(context.Background(), conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created form %q with %d fields in %d groups\n", f.Name, len(f.Fields), len(f.Layout.Groups))
			return nil
		},
	}
}

func newFormsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "forms [search]",
		Short: "List forms, optionally matching a search term",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			search := ""
			if len(args) == 1 {
				search = args[0]
			}
			forms, err := conn.ListForms(context.Background(), search)
			if err != nil {
				return err
			}
			if len(forms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No forms found.")
				return nil
			}
			for _, f := range forms {
				state := ""
				if f.Locked {
					state = " (locked)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s%s\n", f.Name, f.Description, state)
			}
			return nil
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
