// Command trackexo-runs lists the runs recorded by trackexo -db and prints
// the keyframes of a single run.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/banshee-data/trackexo/internal/db"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("trackexo-runs: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("trackexo-runs", flag.ContinueOnError)
	dbPath := fs.String("db", "trackexo.db", "path to the run history database")
	runID := fs.String("run", "", "print the keyframes of this run instead of listing runs")
	limit := fs.Int("limit", 20, "maximum number of runs to list (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*dbPath); err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	database, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer database.Close()
	store := db.NewRunStore(database)

	if *runID != "" {
		return printKeyframes(stdout, store, *runID)
	}
	return printRuns(stdout, store, *limit)
}

func printRuns(w io.Writer, store *db.RunStore, limit int) error {
	runs, err := store.List(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-19s  %6s  %6s  %6s  %4s  %s\n",
		"RUN", "CREATED", "RAW", "CLEAN", "KEYS", "SEGS", "SOURCE -> OUTPUT")
	for _, r := range runs {
		output := r.Output
		if output == "" {
			output = "(preview)"
		}
		fmt.Fprintf(w, "%-36s  %-19s  %6d  %6d  %6d  %4d  %s -> %s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime),
			r.RawPoints, r.CleanedPoints, r.SimplifiedPoints, r.Segments,
			r.Source, output)
	}
	return nil
}

func printKeyframes(w io.Writer, store *db.RunStore, id string) error {
	r, err := store.Get(id)
	if err != nil {
		return err
	}
	frames, err := store.Keyframes(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run %s: %s (%d passes)\n", r.ID, r.Source, r.Passes)
	fmt.Fprintf(w, "Config: %s\n\n", r.ConfigJSON)
	fmt.Fprintf(w, "%6s  %10s  %10s  %8s  %8s  %8s  %s\n", "FRAME", "X", "Y", "W", "H", "R", "COST")
	for _, p := range frames {
		fmt.Fprintf(w, "%6d  %10.2f  %10.2f  %8.2f  %8.2f  %8.2f  %s\n",
			p.Frame, p.X, p.Y, p.W, p.H, p.R, p.Cost)
	}
	return nil
}
