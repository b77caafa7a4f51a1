package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/outbreaklab/go-outbreak/results"
	"github.com/outbreaklab/go-outbreak/store"
)

func runs(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("store", "outbreak.db", "SQLite run archive")
	limit := fs.Int("limit", 20, "Number of runs to list")
	variant := fs.String("model", "", "Filter by model variant")
	export := fs.String("export", "", "Export a run ID to a results JSON file")
	remove := fs.String("delete", "", "Delete a run ID from the archive")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: outbreak runs [options]

List and inspect runs stored in the archive.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # List recent runs
  outbreak runs --store outbreak.db

  # Export one run back to a results file
  outbreak runs --store outbreak.db --export 3fa85f64-5717-4562-b3fc-2c963f66afa6 > /dev/null
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := store.New(*dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if *remove != "" {
		if err := st.DeleteRun(*remove); err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Deleted %s\n", *remove)
		return nil
	}

	if *export != "" {
		doc, err := st.GetRun(*export)
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		out := *export + ".json"
		if err := results.WriteJSON(doc, out); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", out)
		return nil
	}

	var records []*store.Record
	if *variant != "" {
		records, err = st.ListRunsByVariant(*variant, *limit)
	} else {
		records, err = st.ListRuns(*limit)
	}
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No runs stored.")
		return nil
	}

	fmt.Printf("%-36s  %-6s  %-13s  %-8s  %s\n", "RUN ID", "MODEL", "MODE", "STATUS", "CREATED")
	for _, rec := range records {
		fmt.Printf("%-36s  %-6s  %-13s  %-8s  %s\n",
			rec.RunID, rec.Variant, rec.Mode, rec.Status,
			rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
