package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var sampleOut string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a sample contacts CSV to experiment with",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(filepath.Dir(sampleOut), 0o755); err != nil {
			return eris.Wrap(err, "sample: create output directory")
		}

		f, err := os.Create(sampleOut)
		if err != nil {
			return eris.Wrap(err, "sample: create file")
		}
		defer f.Close()

		w := csv.NewWriter(f)
		rows := [][]string{
			{"full_name", "title", "email", "company_name", "company_domain", "industry", "employee_count", "location"},
			{"Jane Doe", "VP of Engineering", "", "Acme Corp", "acme.com", "Software", "250", "Austin, TX"},
			{"John Smith", "Director of Sales", "john.smith@globex.com", "Globex", "globex.com", "Manufacturing", "1,200", "Chicago, IL"},
			{"Ada Park", "Engineering Manager", "", "Initech", "initech.io", "Software", "80", "Remote"},
			{"Sam Rivera", "Accountant", "sam@example.org", "Example LLC", "", "Accounting", "12", "Denver, CO"},
			{"Lee Wong", "Head of Product", "", "Acme Corp", "acme.com", "Software", "250", "Austin, TX"},
		}
		if err := w.WriteAll(rows); err != nil {
			return eris.Wrap(err, "sample: write rows")
		}

		fmt.Printf("Wrote %d sample contacts to %s\n", len(rows)-1, sampleOut)
		return nil
	},
}

func init() {
	sampleCmd.Flags().StringVar(&sampleOut, "out", "sample_contacts.csv", "output path")
	rootCmd.AddCommand(sampleCmd)
}
