package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/graphstudio/studio/internal/models"
)

func newDatabasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "databases",
		Aliases: []string{"db"},
		Short:   "Manage TypeDB databases",
	}
	cmd.AddCommand(databasesListCmd())
	cmd.AddCommand(databasesCreateCmd())
	cmd.AddCommand(databasesDeleteCmd())
	return cmd
}

func databasesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List databases",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			dbs, err := newDriver().Databases.List(cmd.Context())
			if err != nil {
				fatal("list databases", err)
			}

			switch flagFmt {
			case fmtQuiet:
				for _, db := range dbs {
					fmt.Fprintln(os.Stdout, db.Name)
				}
			case fmtTable:
				rows := make([][]string, 0, len(dbs))
				for _, db := range dbs {
					rows = append(rows, []string{db.Name})
				}
				formatTable(os.Stdout, []string{"NAME"}, rows)
			default:
				if err := formatJSON(os.Stdout, dbs); err != nil {
					fatal("list databases", err)
				}
			}
		},
	}
}

func databasesCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := models.ValidateDatabaseName(name); err != nil {
				return err
			}
			if err := newDriver().Databases.Create(cmd.Context(), name); err != nil {
				return fmt.Errorf("create database: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Created database %s\n", name)
			return nil
		},
	}
}

func databasesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a database and all of its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", name)
			}
			if err := newDriver().Databases.Delete(cmd.Context(), name); err != nil {
				return fmt.Errorf("delete database: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Deleted database %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
