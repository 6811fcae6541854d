package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/salescope/salescope/pkg/analysis"
	"github.com/salescope/salescope/pkg/chart"
	"github.com/salescope/salescope/pkg/dataset"
	"github.com/salescope/salescope/pkg/llm"
	"github.com/salescope/salescope/pkg/logger"
	"github.com/salescope/salescope/pkg/metrics"
	"github.com/salescope/salescope/pkg/pipeline"
	"github.com/salescope/salescope/pkg/prompts"
	"github.com/salescope/salescope/pkg/respond"
	"github.com/salescope/salescope/pkg/session"
	"github.com/salescope/salescope/pkg/sqlexec"
	"github.com/salescope/salescope/pkg/table"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 4096
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	csvFlag := flag.String("csv", "", "path to the sales CSV file (required)")
	csvEncodingFlag := flag.String("csv-encoding", "gbk", "CSV encoding: gbk or utf8")
	questionFlag := flag.String("question", "", "question to answer in a single turn")
	reportFlag := flag.Bool("report", false, "run the multi-stage deep-dive report instead of a single turn")
	interactiveFlag := flag.Bool("interactive", false, "start an interactive multi-turn session")
	frameworkFlag := flag.String("framework", "", "analysis framework: descriptive, diagnostic, predictive, swot, funnel, logic_tree")
	modelFlag := flag.String("model", defaultModel, "Anthropic model name")
	maxTokensFlag := flag.Int("max-tokens", defaultMaxTokens, "max completion tokens")
	metricsAddrFlag := flag.String("metrics-addr", "", "address to listen on for prometheus metrics (empty to disable)")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	flag.Parse()

	// Best effort; the API key can come from the environment directly.
	_ = godotenv.Load()

	log := logger.New(*verboseFlag)

	if *csvFlag == "" {
		return fmt.Errorf("-csv is required")
	}
	if *questionFlag == "" && !*interactiveFlag {
		return fmt.Errorf("-question is required unless -interactive is set")
	}

	var enc dataset.Encoding
	switch strings.ToLower(*csvEncodingFlag) {
	case "gbk":
		enc = dataset.EncodingGBK
	case "utf8", "utf-8":
		enc = dataset.EncodingUTF8
	default:
		return fmt.Errorf("unknown csv encoding %q", *csvEncodingFlag)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := <-sigCh
		log.Info("salescope: received signal", "signal", sig.String())
		cancel()
	}()

	if *metricsAddrFlag != "" {
		metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
		go func() {
			listener, err := net.Listen("tcp", *metricsAddrFlag)
			if err != nil {
				log.Error("failed to start prometheus metrics server listener", "error", err)
				return
			}
			log.Info("prometheus metrics server listening", "address", listener.Addr().String())
			http.Handle("/metrics", promhttp.Handler())
			if err := http.Serve(listener, nil); err != nil {
				log.Error("failed to start prometheus metrics server", "error", err)
			}
		}()
	}

	tbl, err := dataset.Load(*csvFlag, enc)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	log.Info("salescope: dataset loaded", "path", *csvFlag, "rows", tbl.Count)

	p, err := prompts.Load()
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	if *frameworkFlag != "" && p.Framework(*frameworkFlag) == "" {
		return fmt.Errorf("unknown framework %q (known: %s)", *frameworkFlag, strings.Join(p.FrameworkNames(), ", "))
	}

	client := llm.NewAnthropicClient(log, anthropic.Model(*modelFlag), int64(*maxTokensFlag))
	responder, err := respond.New(respond.Config{Logger: log, LLM: client, Prompts: p})
	if err != nil {
		return fmt.Errorf("failed to create responder: %w", err)
	}
	executor, err := sqlexec.New(sqlexec.Config{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	if *interactiveFlag {
		return runInteractive(ctx, log, p, responder, executor, tbl, *frameworkFlag)
	}
	if *reportFlag {
		return runReport(ctx, log, responder, executor, tbl, *questionFlag)
	}
	return runSingleTurn(ctx, log, responder, executor, tbl, *questionFlag, *frameworkFlag)
}

func runSingleTurn(ctx context.Context, log *slog.Logger, responder *respond.Responder, executor *sqlexec.Executor, tbl *table.Table, question, framework string) error {
	pipe, err := pipeline.New(pipeline.Config{Logger: log, Responder: responder, Executor: executor})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	turn, _ := pipe.Run(ctx, question, tbl, framework, nil)
	if turn.ErrorMessage != "" {
		return fmt.Errorf("%s", turn.ErrorMessage)
	}
	printTurn(log, turn)
	return nil
}

func printTurn(log *slog.Logger, turn *pipeline.Turn) {
	if turn.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", turn.ErrorMessage)
	}
	if turn.SQL != "" {
		fmt.Printf("SQL:\n%s\n\n", turn.SQL)
	}
	if turn.Result != nil {
		fmt.Println(turn.Result.Markdown())
	}
	if turn.AnalysisText != "" {
		fmt.Printf("\n%s\n", turn.AnalysisText)
	}
	if turn.Chart != nil {
		printChart(log, turn.Chart, turn.Result)
	}
	for _, rec := range turn.Recommendations {
		fmt.Printf("\nSuggested analysis: %s\n  %s\n  Example: %s\n", rec.Title, rec.Description, rec.ExampleQuery)
	}
}

func runReport(ctx context.Context, log *slog.Logger, responder *respond.Responder, executor *sqlexec.Executor, tbl *table.Table, question string) error {
	orch, err := analysis.New(analysis.Config{
		Logger:    log,
		Responder: responder,
		Executor:  executor,
		Clock:     clockwork.NewRealClock(),
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	job := orch.NewJob(question)
	if err := advanceToCompletion(ctx, log, orch, job, tbl); err != nil {
		return err
	}
	printReport(log, job)
	return nil
}

func advanceToCompletion(ctx context.Context, log *slog.Logger, orch *analysis.Orchestrator, job *analysis.Job, tbl *table.Table) error {
	for !job.Status.Terminal() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := orch.Advance(ctx, job, tbl); err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		log.Info("salescope: job progress", "status", job.Status, "message", job.StatusMessage, "stage", job.StageInfo)
	}
	if job.Status == analysis.StatusFailed {
		return fmt.Errorf("analysis failed: %s", job.StatusMessage)
	}
	return nil
}

func runInteractive(ctx context.Context, log *slog.Logger, p *prompts.Prompts, responder *respond.Responder, executor *sqlexec.Executor, tbl *table.Table, framework string) error {
	pipe, err := pipeline.New(pipeline.Config{Logger: log, Responder: responder, Executor: executor})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	orch, err := analysis.New(analysis.Config{
		Logger:    log,
		Responder: responder,
		Executor:  executor,
		Clock:     clockwork.NewRealClock(),
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	manager, err := session.NewManager(session.Config{Logger: log, TTL: time.Hour})
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	defer manager.Stop()

	sess := manager.Get("local")
	sess.SetFramework(framework)

	fmt.Println("Ask a question about the loaded data. Commands: :report <question>, :framework <name>, :clear, :quit")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == ":quit":
			return nil
		case line == ":clear":
			sess.Clear()
			fmt.Println("history cleared")
		case strings.HasPrefix(line, ":framework"):
			name := strings.TrimSpace(strings.TrimPrefix(line, ":framework"))
			if name != "" && p.Framework(name) == "" {
				fmt.Printf("unknown framework %q (known: %s)\n", name, strings.Join(p.FrameworkNames(), ", "))
				break
			}
			sess.SetFramework(name)
		case strings.HasPrefix(line, ":report"):
			question := strings.TrimSpace(strings.TrimPrefix(line, ":report"))
			if question == "" {
				fmt.Println("usage: :report <question>")
				break
			}
			job := orch.NewJob(question)
			sess.StartJob(job)
			if err := advanceToCompletion(ctx, log, orch, job, tbl); err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}
			printReport(log, job)
		default:
			turn, history := pipe.Run(ctx, line, tbl, sess.Framework(), sess.History())
			sess.SetHistory(history)
			printTurn(log, turn)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func printReport(log *slog.Logger, job *analysis.Job) {
	report := job.Stages.Report
	fmt.Printf("# %s\n\n%s\n", report.Title, report.Summary)

	for _, ch := range job.Stages.Report.Chapters {
		fmt.Printf("\n## %s\n\n%s\n", ch.Title, ch.Content)
		if ch.ChartParams == nil {
			continue
		}
		data := job.ChartData(ch.ChartParams.DataKey)
		if data == nil {
			log.Warn("salescope: chapter references unknown data, skipping chart", "chapter", ch.Title, "dataKey", ch.ChartParams.DataKey)
			continue
		}
		spec := &chart.Spec{
			Type:  ch.ChartType,
			XAxis: ch.ChartParams.XAxis,
			YAxis: ch.ChartParams.YAxis,
			Title: ch.ChartParams.Title,
		}
		fmt.Println()
		fmt.Println(data.Markdown())
		printChart(log, spec, data)
	}

	if len(report.Recommendations) > 0 {
		fmt.Printf("\n## Recommendations\n\n")
		for _, rec := range report.Recommendations {
			fmt.Printf("- %s\n", rec)
		}
	}
}

func printChart(log *slog.Logger, spec *chart.Spec, data *table.Table) {
	if err := chart.Resolve(spec, data); err != nil {
		log.Warn("salescope: chart not renderable", "error", err)
		return
	}
	if spec.Type == chart.TypeTable {
		return
	}
	fmt.Printf("\nChart: %s", spec.Type)
	if spec.Title != "" {
		fmt.Printf(" - %s", spec.Title)
	}
	fmt.Println()
	switch spec.Type {
	case chart.TypePie:
		fmt.Printf("  category: %s, value: %s\n", spec.CategoryColumn, spec.ValueColumn)
	default:
		fmt.Printf("  x: %s, y: %s\n", spec.XAxis, strings.Join(spec.YAxis, ", "))
	}
}
