package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/readtrack/internal/config"
	"github.com/mrlokans/readtrack/internal/consistency"
	"github.com/mrlokans/readtrack/internal/database"
)

type CheckConsistencyCommand struct {
	DatabasePath string
	JSON         bool
}

func NewCheckConsistencyCommand() *CheckConsistencyCommand {
	return &CheckConsistencyCommand{}
}

func (cmd *CheckConsistencyCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("check-consistency", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the report as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s check-consistency [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Audit all reading sessions and progress logs for invariant violations.\n")
		fmt.Fprintf(os.Stderr, "The audit is read-only and exits non-zero when issues are found.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s check-consistency\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s check-consistency -db ./my-library.db -json\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *CheckConsistencyCommand) Run() error {
	if _, err := os.Stat(cmd.DatabasePath); os.IsNotExist(err) {
		return fmt.Errorf("database does not exist: %s", cmd.DatabasePath)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	checker := consistency.NewChecker(db.DB)
	report, err := checker.Run()
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if cmd.JSON {
		encoded, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(encoded))
	} else {
		fmt.Printf("=== Consistency Report ===\n")
		fmt.Printf("Sessions checked: %d\n", report.CheckedSessions)
		fmt.Printf("Entries checked:  %d\n", report.CheckedEntries)
		fmt.Printf("Issues found:     %d\n", len(report.Issues))

		for i, issue := range report.Issues {
			fmt.Printf("\n%d. [%s]", i+1, issue.Kind)
			if issue.BookID != 0 {
				fmt.Printf(" book=%d", issue.BookID)
			}
			if issue.SessionID != 0 {
				fmt.Printf(" session=%d", issue.SessionID)
			}
			if issue.EntryID != 0 {
				fmt.Printf(" entry=%d", issue.EntryID)
			}
			fmt.Printf("\n   %s\n", issue.Detail)
		}
	}

	if !report.Clean() {
		return fmt.Errorf("found %d consistency issues", len(report.Issues))
	}
	return nil
}
