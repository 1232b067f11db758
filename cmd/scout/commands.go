package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/brightreply/scout/internal/app"
	"github.com/brightreply/scout/internal/services/knowledge"
)

type urlList []string

func (u *urlList) String() string {
	return strings.Join(*u, ",")
}

func (u *urlList) Set(value string) error {
	*u = append(*u, value)
	return nil
}

// runScan creates a scan job and drives it to completion, then prints the
// final job record.
func runScan(ctx context.Context, application *app.App, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	var urls urlList
	fs.Var(&urls, "url", "URL to scan (repeatable)")
	owner := fs.String("owner", "cli", "Owner identifier for the job")
	name := fs.String("name", "", "Job name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	urls = append(urls, fs.Args()...)
	if len(urls) == 0 {
		return fmt.Errorf("at least one -url is required")
	}

	jobName := *name
	if jobName == "" {
		jobName = fmt.Sprintf("scan of %d urls", len(urls))
	}

	job, err := application.ScannerService.CreateJob(ctx, *owner, jobName, urls)
	if err != nil {
		return err
	}

	if err := application.ScannerService.Scan(ctx, job.ID); err != nil {
		return err
	}

	final, err := application.ScannerService.Status(ctx, job.ID)
	if err != nil {
		return err
	}
	return printJSON(final)
}

// runImport converts a finished scan job's pages into knowledge items
func runImport(ctx context.Context, application *app.App, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	jobID := fs.String("job", "", "Scan job ID to import")
	categoryID := fs.String("category", "", "Target category ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jobID == "" {
		return fmt.Errorf("-job is required")
	}

	stats, err := application.KnowledgeService.ImportFromScan(ctx, *jobID, *categoryID, "cli")
	if err != nil {
		return err
	}
	return printJSON(stats)
}

// runImportFile imports one local document into the knowledge base
func runImportFile(ctx context.Context, application *app.App, args []string) error {
	fs := flag.NewFlagSet("import-file", flag.ExitOnError)
	path := fs.String("path", "", "File to import (.pdf, .md, .txt)")
	categoryID := fs.String("category", "", "Target category ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("-path is required")
	}

	item, err := application.KnowledgeService.ImportFile(ctx, *path, *categoryID, "cli", application.PDFExtractor)
	if err != nil {
		return err
	}
	return printJSON(item)
}

// runSearch queries the knowledge base and prints ranked results
func runSearch(ctx context.Context, application *app.App, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("query", "", "Search query")
	categoryID := fs.String("category", "", "Filter by category ID")
	limit := fs.Int("limit", 10, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q := *query
	if q == "" {
		q = strings.Join(fs.Args(), " ")
	}
	if q == "" {
		return fmt.Errorf("-query is required")
	}

	results, err := application.KnowledgeService.Search(ctx, q, knowledge.SearchOptions{
		CategoryID: *categoryID,
		Limit:      *limit,
	})
	if err != nil {
		return err
	}
	return printJSON(results)
}

// runRender prints one knowledge item's content rendered as HTML
func runRender(ctx context.Context, application *app.App, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	itemID := fs.String("item", "", "Knowledge item ID to render")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := *itemID
	if id == "" && fs.NArg() > 0 {
		id = fs.Arg(0)
	}
	if id == "" {
		return fmt.Errorf("-item is required")
	}

	item, err := application.KnowledgeService.GetItem(ctx, id)
	if err != nil {
		return err
	}

	html, err := knowledge.RenderHTML(item.Content)
	if err != nil {
		return err
	}
	fmt.Println(html)
	return nil
}

// runAnalytics prints the knowledge base rollup
func runAnalytics(ctx context.Context, application *app.App) error {
	analytics, err := application.KnowledgeService.Analytics(ctx)
	if err != nil {
		return err
	}
	return printJSON(analytics)
}

// runServe starts the maintenance scheduler and blocks until interrupted
func runServe(ctx context.Context, application *app.App) error {
	if err := application.SchedulerService.Start(); err != nil {
		return err
	}
	application.Logger.Info().Msg("Scheduler running, press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
