package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobpilot/jobpilot/internal/aggregator"
	"github.com/jobpilot/jobpilot/internal/ai"
	"github.com/jobpilot/jobpilot/internal/ai/gemini"
	aopenai "github.com/jobpilot/jobpilot/internal/ai/openai"
	"github.com/jobpilot/jobpilot/internal/cache"
	"github.com/jobpilot/jobpilot/internal/constraints"
	"github.com/jobpilot/jobpilot/internal/fetcher"
	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/logger"
	"github.com/jobpilot/jobpilot/internal/provider"
	"github.com/jobpilot/jobpilot/internal/secrets"
	"github.com/jobpilot/jobpilot/internal/session"
	"github.com/jobpilot/jobpilot/internal/tailor"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptTailor            = "Tailor a CV for a posting"
	PromptNo                = "No"
	PromptBack              = "back"
	PromptReportByEmployers = "Report by employers"
	PromptPostingsToFile    = "Dump postings to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptTailor, PromptNo, PromptReportByEmployers, PromptPostingsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jobpilot main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "tailor the top-ranked posting without asking")
	runCmd.Flags().StringP("output", "o", "", "directory for tailored CV files. Default is the working directory.")

	viper.BindPFlag("output", runCmd.Flags().Lookup("output"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobpilot", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Search == nil || len(config.Search.Titles) == 0 {
		logger.Fatal("at least one search title is required under search.titles")
	}

	if config.Resume == "" {
		logger.Fatal("a base CV file is required under resume")
	}

	baseCV, err := os.ReadFile(config.Resume)
	if err != nil {
		logger.Fatal("reading base CV file", zap.Error(err), zap.String("path", config.Resume))
	}

	region := provider.Region(strings.ToLower(strings.TrimSpace(config.Region)))
	if region == "" {
		region = provider.RegionUS
	}

	providers, err := provider.ForRegion(region, newProviderClient(config, logger))
	if err != nil {
		logger.Fatal("resolving region providers", zap.Error(err))
	}

	engine := aggregator.New(
		map[provider.Region][]provider.Provider{region: providers},
		newCacheStore(ctx, config, logger),
		logger,
		aggregatorOptions(config)...,
	)

	filter := searchFilter(config.Search)

	logger.Info("starting the search",
		zap.String("region", string(region)),
		zap.Strings("titles", filter.Titles),
	)

	result, err := engine.Search(ctx, region, filter)
	if err != nil {
		logger.Fatal("searching postings", zap.Error(err))
	}

	if len(result.Report.Failed) > 0 {
		logger.Warn("some sources did not contribute", zap.Any("failed", result.Report.Failed))
	}

	postings := &jobs.Postings{Items: result.Postings}
	if postings.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building generator", zap.Error(err))
	}

	tailorer := newTailorEngine(generator, config.AI, logger)
	sessions := session.NewStore(session.DefaultCapacity)
	deps := &runDeps{
		config:   config,
		logger:   logger,
		fetcher:  fetcher.New(userAgent(config), logger),
		tailorer: tailorer,
		sessions: sessions,
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		logger.Info("auto-approve enabled, tailoring the top-ranked posting")
		if err := deps.tailorPosting(ctx, string(baseCV), postings.Items[0]); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		logger.Info("current list of postings", zap.Int("count", postings.Len()))

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := deps.handleAction(ctx, action, string(baseCV), postings); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

type runDeps struct {
	config   *Config
	logger   *zap.Logger
	fetcher  *fetcher.Fetcher
	tailorer *tailor.Engine
	sessions *session.Store
}

func (d *runDeps) handleAction(ctx context.Context, action, baseCV string, postings *jobs.Postings) error {
	switch action {
	case PromptTailor:
		return d.choosePosting(ctx, baseCV, postings)
	case PromptNo:
		d.logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByEmployers:
		pretty, _ := json.MarshalIndent(postings.ReportByEmployer(), "", "  ")
		d.logger.Info(string(pretty), zap.Int("postings count", postings.Len()))
		return nil
	case PromptPostingsToFile:
		filename, err := postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		d.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (d *runDeps) choosePosting(ctx context.Context, baseCV string, postings *jobs.Postings) error {
	for {
		items := make([]string, 0, postings.Len()+1)
		for _, p := range postings.Items {
			items = append(items, p.Label())
		}

		postingPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: append(items, PromptBack),
			Size:  12,
		}

		idx, selected, err := postingPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		if err := d.tailorPosting(ctx, baseCV, postings.Items[idx]); err != nil {
			return err
		}
	}
}

func (d *runDeps) tailorPosting(ctx context.Context, baseCV string, posting *jobs.Posting) error {
	user := userID()

	if existing, ok := d.sessions.Get(user, posting.Key()); ok {
		if doc, score, ok := existing.Document(); ok {
			d.logger.Info("reusing earlier tailoring session",
				zap.String("session_id", existing.ID),
				zap.Int("score", score),
			)
			return d.writeDocument(posting, existing, doc)
		}
	}

	description, err := d.fetcher.Describe(ctx, posting.URL)
	if err != nil {
		if !errors.Is(err, fetcher.ErrUnreachable) {
			return err
		}
		d.logger.Warn("falling back to posting snippet",
			zap.String("url", posting.URL),
			zap.Error(err),
		)
		description = posting.Snippet
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("no description available for %q", posting.Title)
	}

	profile := constraints.Resolve(posting.Employer)

	result, err := d.tailorer.Run(ctx, tailor.Input{
		BaseCV:         baseCV,
		JobDescription: description,
		JobTitle:       posting.Title,
		Employer:       posting.Employer,
		Profile:        profile,
	})
	if err != nil {
		return err
	}

	d.sessions.Put(user, posting.Key(), result)

	doc, score, ok := result.Document()
	if !ok {
		return fmt.Errorf("tailoring produced no usable document for %q", posting.Title)
	}

	d.logger.Info("tailoring finished",
		zap.String("session_id", result.ID),
		zap.String("status", string(result.Status)),
		zap.Int("score", score),
		zap.Int("attempts", len(result.Attempts)),
	)

	return d.writeDocument(posting, result, doc)
}

func (d *runDeps) writeDocument(posting *jobs.Posting, s *tailor.Session, doc string) error {
	dir := viper.GetString("output")
	if dir == "" {
		dir = d.config.Output
	}
	if dir == "" {
		dir = "."
	}

	name := fmt.Sprintf("cv-%s-%s.md", slugify(posting.Employer), s.ID[:8])
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("writing tailored CV: %w", err)
	}

	d.logger.Info("tailored CV written", zap.String("filename", path))
	return nil
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// userID scopes the in-memory session store. A single CLI run serves one
// user, so the OS user is enough.
func userID() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

func userAgent(config *Config) string {
	if config.UserAgent != "" {
		return config.UserAgent
	}
	return app + "/" + version
}

func newProviderClient(config *Config, logger *zap.Logger) *provider.Client {
	client := provider.NewClient(logger)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	return client
}

func newCacheStore(ctx context.Context, config *Config, logger *zap.Logger) cache.Store {
	if config.Cache != nil && config.Cache.RedisURL != "" {
		store, err := cache.NewRedis(ctx, config.Cache.RedisURL, logger)
		if err == nil {
			return store
		}
		logger.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
	}
	return cache.NewMemory()
}

func aggregatorOptions(config *Config) []aggregator.Option {
	var opts []aggregator.Option
	if config.Cache != nil && config.Cache.TTL > 0 {
		opts = append(opts, aggregator.WithTTL(config.Cache.TTL))
	}
	return opts
}

func searchFilter(search *SearchConfig) provider.Filter {
	return provider.Filter{
		Titles:       search.Titles,
		Location:     search.Location,
		LocationType: jobs.ParseLocationType(search.LocationType),
		DaysAgo:      search.DaysAgo,
	}
}

func newTailorEngine(generator ai.Generator, cfg *AIConfig, logger *zap.Logger) *tailor.Engine {
	var opts []tailor.Option
	if cfg != nil {
		if cfg.TargetScore > 0 {
			opts = append(opts, tailor.WithTargetScore(cfg.TargetScore))
		}
		if cfg.MaxAttempts > 0 {
			opts = append(opts, tailor.WithMaxAttempts(cfg.MaxAttempts))
		}
		opts = append(opts, tailor.WithMaxLogLength(cfg.MaxLogLength))
	}
	return tailor.New(generator, logger, opts...)
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	if cfg == nil {
		return nil, errors.New("ai configuration is required")
	}

	switch provider := strings.TrimSpace(strings.ToLower(cfg.Provider)); provider {
	case "", "gemini":
		if cfg.Gemini == nil {
			cfg.Gemini = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		logger.WithCommonFields(log, "gemini", generator.Model()).Info("generator ready")
		return generator, nil
	case "openai":
		if cfg.OpenAI == nil {
			cfg.OpenAI = &OpenAIConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}

		generator, err := aopenai.NewGenerator(apiKey, cfg.OpenAI.Model)
		if err != nil {
			return nil, err
		}
		logger.WithCommonFields(log, "openai", generator.Model()).Info("generator ready")
		return generator, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
