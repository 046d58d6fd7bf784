// Command analyze runs one analysis pass from the command line and
// prints the result as a table, optionally writing the full dataset to
// a CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mohamedkhairy/stocklens/internal/api"
	"github.com/mohamedkhairy/stocklens/internal/config"
	"github.com/mohamedkhairy/stocklens/internal/data"
	"github.com/mohamedkhairy/stocklens/internal/engine"
	"github.com/mohamedkhairy/stocklens/internal/models"
	"github.com/mohamedkhairy/stocklens/pkg/logger"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		symbol     = flag.String("symbol", "", "ticker symbol (required)")
		startStr   = flag.String("start", "", "start date YYYY-MM-DD (default: one year ago)")
		endStr     = flag.String("end", "", "end date YYYY-MM-DD (default: today)")
		indicators = flag.String("indicators", "", "comma-separated indicator list (default: all)")
		provider   = flag.String("provider", "yahoo", "history provider: yahoo or mock")
		csvPath    = flag.String("csv", "", "write the full dataset to this CSV file")
		timeout    = flag.Duration("timeout", 30*time.Second, "fetch deadline")
	)
	flag.Parse()

	if err := logger.Init("warn", "development"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "-symbol is required")
		flag.Usage()
		os.Exit(2)
	}

	req := models.AnalysisRequest{
		Symbol: strings.ToUpper(*symbol),
		Config: models.DefaultIndicatorConfig(),
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	req.End = now
	req.Start = now.AddDate(-1, 0, 0)
	if *startStr != "" {
		t, err := time.Parse(dateLayout, *startStr)
		if err != nil {
			fatalf("invalid -start: %v", err)
		}
		req.Start = t
	}
	if *endStr != "" {
		t, err := time.Parse(dateLayout, *endStr)
		if err != nil {
			fatalf("invalid -end: %v", err)
		}
		req.End = t
	}

	if *indicators != "" {
		for _, token := range strings.Split(*indicators, ",") {
			kind, err := models.ParseIndicatorKind(strings.TrimSpace(strings.ToLower(token)))
			if err != nil {
				fatalf("invalid indicator %q", token)
			}
			req.Indicators = append(req.Indicators, kind)
		}
	} else {
		req.Indicators = models.AllIndicators()
	}

	p, err := data.NewFactory().Create(*provider, config.ProviderConfig{FetchTimeout: *timeout})
	if err != nil {
		fatalf("create provider: %v", err)
	}
	service := engine.NewAnalysisService(p, engine.New(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	analysis, err := service.Analyze(ctx, req)
	if err != nil {
		fatalf("analyze: %v", err)
	}

	printAnalysis(analysis)

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			fatalf("create csv: %v", err)
		}
		defer f.Close()
		if err := api.WriteCSV(f, analysis); err != nil {
			fatalf("write csv: %v", err)
		}
		fmt.Printf("\nWrote %s\n", *csvPath)
	}
}

func printAnalysis(a *models.Analysis) {
	fmt.Printf("%s  (%d bars)\n\n", a.Symbol, a.Series.Len())

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "start price\t%.2f\n", a.Summary.StartPrice)
	fmt.Fprintf(tw, "current price\t%.2f\n", a.Summary.CurrentPrice)
	fmt.Fprintf(tw, "period high\t%.2f\n", a.Summary.PeriodHigh)
	fmt.Fprintf(tw, "period low\t%.2f\n", a.Summary.PeriodLow)
	tw.Flush()

	if a.MinimalView {
		fmt.Println("\nSeries too short for indicators; closes only:")
		for _, bar := range a.Series.Bars {
			fmt.Printf("  %s  %.2f\n", bar.Timestamp.Format(dateLayout), bar.Close)
		}
		return
	}

	if len(a.Insufficient) > 0 {
		fmt.Println("\nInsufficient data:")
		for _, ins := range a.Insufficient {
			fmt.Printf("  %s: need %d bars, have %d\n", ins.Indicator, ins.Required, ins.Available)
		}
	}

	if len(a.Columns) > 0 {
		fmt.Println("\nLatest indicator values:")
		tw = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for name, values := range a.Columns {
			last := ""
			for i := len(values) - 1; i >= 0; i-- {
				if values[i] == values[i] { // skip NaN
					last = fmt.Sprintf("%.4f", values[i])
					break
				}
			}
			if last == "" {
				last = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\n", name, last)
		}
		tw.Flush()
	}

	if len(a.Levels) > 0 {
		fmt.Println("\nConfluence levels:")
		for _, level := range a.Levels {
			fmt.Printf("  %.2f\n", level)
		}
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
