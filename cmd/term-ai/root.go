package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shapedthought/term-ai/internal/config"
	"github.com/shapedthought/term-ai/internal/engine"
	"github.com/shapedthought/term-ai/internal/llm"
	"github.com/shapedthought/term-ai/internal/prompts"
	"github.com/shapedthought/term-ai/internal/search"
)

// options holds raw flag values. Empty means "not set on the command
// line"; resolve applies the flag > env > config > default precedence.
type options struct {
	model          string
	endpoint       string
	websearch      bool
	searchProvider string
	braveAPIKey    string
	maxResults     int
	verbose        bool
	logLevel       string
	configPath     string
}

// settings are the fully resolved run parameters.
type settings struct {
	model          string
	endpoint       string
	logLevel       string
	searchProvider string
	braveAPIKey    string
	maxResults     int
}

// Execute runs the CLI. Fatal errors print one line to stderr; the caller
// owns the exit code.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
	}
	return err
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "term-ai [prompt]",
		Short: "Turn natural-language requests into shell commands with a local Ollama model",
		Long: `term-ai asks a local Ollama model to translate a natural-language request
into shell commands. With --websearch the model may consult a web-search
provider (DuckDuckGo by default, Brave with an API key) before answering.

Examples:
  term-ai "find all files larger than 100MB"
  echo "install redis" | term-ai
  term-ai -w "latest stable rust version"
  term-ai -w -v --search-provider brave "newest go release"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.model, "model", "m", "", "model name (env "+config.EnvModel+", default "+config.DefaultModel+")")
	pf.StringVarP(&opts.endpoint, "endpoint", "e", "", "Ollama endpoint (env "+config.EnvEndpoint+", default "+config.DefaultEndpoint+")")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (default warn)")
	pf.StringVar(&opts.configPath, "config", "", "config file (default ./term-ai.yaml, ~/.config/term-ai/config.yaml)")

	f := cmd.Flags()
	f.BoolVarP(&opts.websearch, "websearch", "w", false, "let the model search the web via tool calling")
	f.StringVar(&opts.searchProvider, "search-provider", "", "search provider: duckduckgo or brave (default: auto-detect)")
	f.StringVar(&opts.braveAPIKey, "brave-api-key", "", "Brave Search API key (env "+config.EnvBraveKey+")")
	f.IntVar(&opts.maxResults, "max-results", 0, fmt.Sprintf("maximum search results per query (default %d)", config.DefaultMaxResults))
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "show executed searches and sources with the answer")

	cmd.AddCommand(newModelsCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// resolve loads the config file and applies flag > env > config > default
// precedence to every setting.
func resolve(opts *options) (*settings, error) {
	path, err := config.FindConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	s := &settings{
		model:          cfg.Model,
		endpoint:       cfg.Endpoint,
		logLevel:       cfg.LogLevel,
		searchProvider: cfg.Search.Provider,
		braveAPIKey:    cfg.Search.Brave.APIKey,
		maxResults:     cfg.Search.MaxResults,
	}

	if v := os.Getenv(config.EnvModel); v != "" {
		s.model = v
	}
	if v := os.Getenv(config.EnvEndpoint); v != "" {
		s.endpoint = v
	}
	if v := os.Getenv(config.EnvBraveKey); v != "" {
		s.braveAPIKey = v
	}

	if opts.model != "" {
		s.model = opts.model
	}
	if opts.endpoint != "" {
		s.endpoint = opts.endpoint
	}
	if opts.logLevel != "" {
		s.logLevel = opts.logLevel
	}
	if opts.searchProvider != "" {
		s.searchProvider = opts.searchProvider
	}
	if opts.braveAPIKey != "" {
		s.braveAPIKey = opts.braveAPIKey
	}
	if opts.maxResults > 0 {
		s.maxResults = opts.maxResults
	}
	if s.maxResults <= 0 {
		s.maxResults = config.DefaultMaxResults
	}

	return s, nil
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	s, err := resolve(opts)
	if err != nil {
		return err
	}

	level, err := config.ParseLogLevel(s.logLevel)
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, level)

	prompt, err := readPrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := llm.NewOllamaClient(s.endpoint, nil)

	if !opts.websearch {
		out, err := client.Generate(ctx, s.model, prompts.BuildPrompt(prompt))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	provider, err := search.Resolve(s.searchProvider, s.braveAPIKey, nil)
	if err != nil {
		return err
	}

	eng := engine.New(logger, client, provider, engine.Options{
		Model:      s.model,
		MaxResults: s.maxResults,
		Verbose:    opts.verbose,
	})

	result, err := eng.Run(ctx, prompt)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Text)
	return nil
}

// readPrompt returns the positional argument when present, otherwise the
// trimmed contents of stdin. An empty prompt from both sources is an
// error.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("no prompt provided (pass an argument or pipe text via stdin)")
	}
	return prompt, nil
}
