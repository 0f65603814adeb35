package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/progress"
)

func newScrapeCmd() *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one aggregation pass over the configured catalog and exit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, sources)
		},
	}
	cmd.Flags().StringSliceVar(&sources, "sources", nil,
		"sources to use (default: all registered)")
	return cmd
}

func runScrape(cmd *cobra.Command, sources []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(sources) == 0 {
		sources = a.Sources.Names()
	}

	id, err := a.Orchestrator.Submit(ctx, a.Catalog, sources)
	if err != nil {
		return err
	}
	j, ok := a.Registry.Get(id)
	if !ok {
		return fmt.Errorf("job %s vanished after submit", id)
	}

	fmt.Printf("Job %s started: %d topics across %d categories\n",
		id, a.Catalog.TotalTopics(), len(a.Catalog))

	var last progress.Snapshot
	for {
		snap, err := j.Stream.Next(ctx, time.Minute)
		if errors.Is(err, progress.ErrDone) {
			break
		}
		if err != nil {
			return fmt.Errorf("progress stream: %w", err)
		}
		if snap.Heartbeat {
			continue
		}
		if snap.CurrentTopic != "" && snap.CurrentSource != "" {
			fmt.Printf("  [%d/%d] %s (%s)\n",
				snap.CompletedTopics+1, snap.TotalTopics, snap.CurrentTopic, snap.CurrentSource)
		}
		last = snap
		if snap.Status.Terminal() {
			break
		}
	}

	switch last.Status {
	case progress.StatusComplete:
		fmt.Printf("Done: %d files saved under %s\n", last.FilesCount, j.OutputDir)
		fmt.Printf("Index: %s/INDEX.txt\n", j.OutputDir)
	case progress.StatusError:
		return fmt.Errorf("job failed: %s", last.Error)
	}
	return nil
}
