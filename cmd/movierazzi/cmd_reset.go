/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/movierazzi/internal/db"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and re-create the database schema",
	Long: `Reset MovieRazzi to a fresh state.

This command drops all tables (users, schedules, schedule items,
availability records, audit logs) and re-creates them empty.

WARNING: This action is irreversible! All data will be lost.

Examples:
  # Interactive reset (will prompt for confirmation)
  movierazzi reset

  # Force reset without confirmation
  movierazzi reset --force
`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	if !resetForce {
		fmt.Print("This will DELETE ALL DATA. Type 'yes' to continue: ")
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(strings.ToLower(answer)) != "yes" {
			fmt.Println("aborted")
			return nil
		}
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	if err := db.Reset(database); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("re-create tables: %w", err)
	}

	logger.Info().Msg("database reset complete")
	return nil
}
