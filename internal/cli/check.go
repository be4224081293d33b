package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nicholasgeorgeson-prog/linksentry/internal/cache"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/exclude"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/job"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/logger"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/model"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/netcheck"
	"github.com/nicholasgeorgeson-prog/linksentry/internal/summary"
)

var (
	inputFile      string
	mode           string
	depth          string
	timeoutSeconds int
	maxRetries     int
	rulesFile      string
	outJSON        string
	proxyURL       string
	clientCert     string
	clientKey      string
	caBundle       string
	useSSO         bool
	insecureTLS    bool
	respectRobots  bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [url...]",
	Short: "Validate link targets from arguments or a file",
	Long: `Check validates a list of link targets and writes one result record
per link, in input order, plus an aggregate summary.

Offline mode classifies and format-checks without touching the network.
Live mode probes web URLs; scan depth controls the optional sub-checks
(DNS resolution, certificate inspection, soft-404 detection,
suspicious-URL heuristics).

Example:
  linksentry check https://example.com/page https://example.org
  linksentry check --file links.txt --depth thorough --json report.json
  linksentry check --file links.txt --mode offline
  linksentry check --file links.txt --rules exclusions.yaml --retries 3`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Flag defaults come from the same tree `config init` writes
	defaults := model.DefaultConfig()

	checkCmd.Flags().StringVar(&inputFile, "file", "", "read link targets from a file (one per line)")
	checkCmd.Flags().StringVar(&mode, "mode", "live", "validation mode (offline, live)")
	checkCmd.Flags().StringVar(&depth, "depth", "standard", "scan depth (quick, standard, thorough)")
	checkCmd.Flags().IntVar(&timeoutSeconds, "timeout", defaults.HTTP.TimeoutSeconds, "per-attempt timeout in seconds")
	checkCmd.Flags().IntVar(&maxRetries, "retries", defaults.Retry.MaxRetries, "additional attempts for retryable failures")
	checkCmd.Flags().StringVar(&rulesFile, "rules", "", "exclusion rules file (YAML)")
	checkCmd.Flags().StringVar(&outJSON, "json", defaults.Output.JSON, "write results and summary to a JSON file")
	checkCmd.Flags().StringVar(&proxyURL, "proxy", defaults.Auth.ProxyURL, "upstream proxy URL")
	checkCmd.Flags().StringVar(&clientCert, "client-cert", defaults.Auth.ClientCertFile, "client certificate file (PEM)")
	checkCmd.Flags().StringVar(&clientKey, "client-key", defaults.Auth.ClientKeyFile, "client certificate key file (PEM)")
	checkCmd.Flags().StringVar(&caBundle, "ca-bundle", defaults.Auth.CABundleFile, "custom trust-anchor bundle (PEM)")
	checkCmd.Flags().BoolVar(&useSSO, "sso", defaults.Auth.UseSSO, "enable integrated single-sign-on handshake")
	checkCmd.Flags().BoolVar(&insecureTLS, "insecure", defaults.Auth.InsecureTLS, "skip TLS certificate verification")
	checkCmd.Flags().BoolVar(&respectRobots, "respect-robots", defaults.HTTP.RespectRobots, "skip links disallowed by robots.txt")
}

func runCheck(cmd *cobra.Command, args []string) error {
	targets := args
	if inputFile != "" {
		fromFile, err := readTargetsFromFile(inputFile)
		if err != nil {
			return err
		}
		targets = append(targets, fromFile...)
	}
	if len(targets) == 0 {
		return fmt.Errorf("no link targets given (pass URLs or --file)")
	}

	// Build configuration from flags
	cfg := model.DefaultConfig()
	cfg.HTTP.TimeoutSeconds = timeoutSeconds
	cfg.HTTP.RespectRobots = respectRobots
	cfg.Retry.MaxRetries = maxRetries
	cfg.Auth = model.AuthConfig{
		ClientCertFile: clientCert,
		ClientKeyFile:  clientKey,
		CABundleFile:   caBundle,
		ProxyURL:       proxyURL,
		UseSSO:         useSSO,
		InsecureTLS:    insecureTLS,
	}
	cfg.Output.Verbose = verbose
	cfg.Output.JSON = outJSON

	if rulesFile != "" {
		rules, err := exclude.LoadRules(rulesFile)
		if err != nil {
			return err
		}
		cfg.Exclusions = rules
	}

	req := &model.ValidationRequest{
		Mode:           model.Mode(mode),
		ScanDepth:      model.ScanDepth(depth),
		TimeoutSeconds: cfg.HTTP.TimeoutSeconds,
		MaxRetries:     cfg.Retry.MaxRetries,
		RespectRobots:  cfg.HTTP.RespectRobots,
		Auth:           cfg.Auth,
		Exclusions:     cfg.Exclusions,
	}
	for _, target := range targets {
		req.Links = append(req.Links, model.LinkCandidate{Target: target})
	}

	log := zap.NewNop()
	if verbose {
		built, err := logger.New(true)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = built.Sync() }()
		log = built
	}

	lookupCache := cache.NewMemoryCache(10*time.Minute, 30*time.Minute)
	liveOpts := netcheck.LiveOptions{
		UserAgent:    cfg.HTTP.UserAgent,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		MaxRedirects: cfg.HTTP.MaxRedirects,
		Limiter:      netcheck.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		LookupCache:  lookupCache,
	}
	if cfg.HTTP.RespectRobots {
		liveOpts.Robots = netcheck.NewRobotsChecker(lookupCache, cfg.HTTP.UserAgent, req.Timeout())
	}

	orch := job.NewOrchestrator(job.Options{
		Store:    job.NewStore(cfg.Jobs.TTL, cfg.Jobs.MaxJobs),
		Workers:  cfg.Jobs.MaxParallel,
		LiveOpts: liveOpts,
		Logger:   log,
	})
	defer orch.Close()

	jobID, err := orch.Start(req)
	if err != nil {
		return fmt.Errorf("start validation: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Validating %d links (job %s)\n", len(targets), jobID)
	}

	progress := pollUntilDone(orch, jobID)
	if progress.Status == model.JobFailed {
		return fmt.Errorf("validation failed: %s", progress.Error)
	}

	results, err := orch.Results(jobID)
	if err != nil {
		return fmt.Errorf("fetch results: %w", err)
	}

	return render(results, progress.Summary, cfg.Output.JSON)
}

// pollUntilDone polls the job and, when verbose, renders a coarse
// progress line on each phase change
func pollUntilDone(orch *job.Orchestrator, jobID string) model.JobProgress {
	var lastPhase model.JobPhase
	for {
		progress, err := orch.Poll(jobID)
		if err != nil {
			return model.JobProgress{Status: model.JobFailed, Error: err.Error()}
		}
		if verbose && progress.Phase != lastPhase {
			fmt.Fprintf(os.Stderr, "  %s (%.0f%%)\n", progress.Phase, progress.OverallPercent)
			lastPhase = progress.Phase
		}
		if progress.Status.Terminal() {
			return progress
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func render(results []model.ValidationResult, agg *model.ValidationSummary, jsonPath string) error {
	if agg == nil {
		s := summary.Aggregate(results)
		agg = &s
	}

	for _, r := range results {
		line := fmt.Sprintf("%-13s %s", r.Status, r.URL)
		if r.Message != "" {
			line += "  (" + r.Message + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d links: %d working, %d broken, success rate %.1f%%\n",
		agg.Total,
		agg.CountsByStatus[model.StatusWorking]+agg.CountsByStatus[model.StatusRedirect],
		agg.CountsByStatus[model.StatusBroken],
		agg.SuccessRate)

	if jsonPath == "" {
		return nil
	}

	payload := struct {
		Results []model.ValidationResult `json:"results"`
		Summary *model.ValidationSummary `json:"summary"`
	}{Results: results, Summary: agg}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", jsonPath)
	}
	return nil
}

// readTargetsFromFile reads link targets from a file (one per line)
func readTargetsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var targets []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return targets, nil
}
