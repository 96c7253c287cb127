package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cypherlabdev/parlay-engine-service/internal/cache"
	"github.com/cypherlabdev/parlay-engine-service/internal/config"
	"github.com/cypherlabdev/parlay-engine-service/internal/feed"
	"github.com/cypherlabdev/parlay-engine-service/internal/models"
	"github.com/cypherlabdev/parlay-engine-service/internal/service"
	"github.com/cypherlabdev/parlay-engine-service/pkg/parlay"
)

type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "parlayctl",
		Short:        "Generate, size and settle UFC parlays",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config file (defaults and PARLAY_ENGINE_* env when empty)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(a.simulateCmd(), a.fetchCmd(), a.convertCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(a.logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Str("service", "parlayctl").Logger()
	return nil
}

func (a *app) simulateCmd() *cobra.Command {
	var (
		oddsFile string
		probs    []string
		winners  string
		strategy strategyFlags
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Rank parlays for the fights in an odds CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fights, err := readOddsFile(oddsFile, a.logger)
			if err != nil {
				return err
			}
			pairs, err := parseProbabilities(probs)
			if err != nil {
				return err
			}
			cfg, err := strategy.apply(cmd, a.cfg.Strategy.ToStrategyConfig())
			if err != nil {
				return err
			}

			engine := parlay.NewEngine(a.cfg.Engine.ToEngineParams(), a.logger)
			svc := service.NewParlayService(engine, cache.NewMemoryCache(time.Hour, a.logger),
				service.ServiceParams{MaxFights: a.cfg.Engine.MaxFights}, a.logger)

			ctx := cmd.Context()
			result, err := svc.SimulateFights(ctx, fights, pairs, cfg)
			if err != nil {
				return err
			}

			out := map[string]any{"simulation": result}
			if winners != "" {
				settled, err := svc.Reconcile(ctx, result.RunID, splitList(winners))
				if err != nil {
					return err
				}
				out["reconciliation"] = settled
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&oddsFile, "odds", "", "odds CSV (event_time,bookmaker,Fighter,Opponent,odds_f1,odds_f2)")
	cmd.Flags().StringArrayVar(&probs, "prob", nil, "fighter,opponent win probability in percent, once per fight in file order (default 50,50)")
	cmd.Flags().StringVar(&winners, "winners", "", "comma-separated winner per fight, settles the run")
	strategy.register(cmd)
	_ = cmd.MarkFlagRequired("odds")
	return cmd
}

func (a *app) fetchCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download current moneylines from the odds API as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Feed.APIKey == "" {
				return fmt.Errorf("feed.api_key is not set (PARLAY_ENGINE_FEED_API_KEY)")
			}
			client := feed.NewOddsAPIClient(feed.OddsAPIConfig{
				BaseURL:    a.cfg.Feed.BaseURL,
				APIKey:     a.cfg.Feed.APIKey,
				Sport:      a.cfg.Feed.Sport,
				Bookmaker:  a.cfg.Feed.Bookmaker,
				RateLimit:  a.cfg.Feed.RateLimit,
				Timeout:    a.cfg.Feed.Timeout,
				MaxRetries: a.cfg.Feed.MaxRetries,
			}, a.logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Feed.Timeout*time.Duration(a.cfg.Feed.MaxRetries+1))
			defer cancel()
			fights, err := client.FetchFights(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outFile, err)
				}
				defer f.Close()
				w = f
			}
			if err := feed.WriteOddsCSV(w, fights); err != nil {
				return err
			}
			a.logger.Info().Int("fights", len(fights)).Str("out", outFile).Msg("wrote odds")
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output CSV file (stdout when empty)")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	var (
		american    int
		decimalOdds float64
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between American and decimal odds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("american") {
				d, err := parlay.AmericanToDecimal(american)
				if err != nil {
					return err
				}
				p, _ := parlay.ImpliedProbability(american)
				fmt.Fprintf(out, "american %+d = decimal %.4f, implied probability %.2f%%\n", american, d, p*100)
				return nil
			}
			odds, err := parlay.DecimalToAmerican(decimalOdds)
			if err != nil {
				return err
			}
			p, _ := parlay.DecimalImpliedProbability(decimalOdds)
			fmt.Fprintf(out, "decimal %.4f = american %+d, implied probability %.2f%%\n", decimalOdds, odds, p*100)
			return nil
		},
	}

	cmd.Flags().IntVar(&american, "american", 0, "American odds, e.g. -200 or 150")
	cmd.Flags().Float64Var(&decimalOdds, "decimal", 0, "decimal odds, e.g. 2.5")
	cmd.MarkFlagsMutuallyExclusive("american", "decimal")
	cmd.MarkFlagsOneRequired("american", "decimal")
	return cmd
}

// strategyFlags overrides configured strategy fields that were set on the command line
type strategyFlags struct {
	parlayRisk    int
	betSizeRisk   int
	numBets       int
	bankroll      string
	fixedAmount   string
	staking       string
	selection     string
	normalization string
}

func (s *strategyFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&s.parlayRisk, "parlay-risk", 0, "1-10, sets the maximum legs per parlay")
	f.IntVar(&s.betSizeRisk, "bet-size-risk", 0, "1-10, sets the bankroll fraction for fixedRisk")
	f.IntVar(&s.numBets, "num-bets", 0, "bets kept in each ranked view")
	f.StringVar(&s.bankroll, "bankroll", "", "bankroll, e.g. 1000")
	f.StringVar(&s.fixedAmount, "fixed-amount", "", "stake per bet for fixedAmount")
	f.StringVar(&s.staking, "staking", "", "fixedRisk, kelly, halfKelly, quarterKelly or fixedAmount")
	f.StringVar(&s.selection, "selection", "", "edge, favorites, underdogs, confidence, mixed or oddsWeighted")
	f.StringVar(&s.normalization, "normalization", "", "perLeg or none")
}

func (s *strategyFlags) apply(cmd *cobra.Command, cfg models.StrategyConfig) (models.StrategyConfig, error) {
	f := cmd.Flags()
	if f.Changed("parlay-risk") {
		cfg.ParlayRisk = s.parlayRisk
	}
	if f.Changed("bet-size-risk") {
		cfg.BetSizeRisk = s.betSizeRisk
	}
	if f.Changed("num-bets") {
		cfg.NumBets = s.numBets
	}
	if f.Changed("bankroll") {
		v, err := decimal.NewFromString(s.bankroll)
		if err != nil {
			return cfg, fmt.Errorf("invalid --bankroll %q: %w", s.bankroll, err)
		}
		cfg.Bankroll = v
	}
	if f.Changed("fixed-amount") {
		v, err := decimal.NewFromString(s.fixedAmount)
		if err != nil {
			return cfg, fmt.Errorf("invalid --fixed-amount %q: %w", s.fixedAmount, err)
		}
		cfg.FixedAmount = v
	}
	if f.Changed("staking") {
		cfg.Staking = models.StakingPolicy(s.staking)
	}
	if f.Changed("selection") {
		cfg.Selection = models.SelectionPolicy(s.selection)
	}
	if f.Changed("normalization") {
		cfg.Normalization = models.StakeNormalization(s.normalization)
	}
	return cfg, nil
}

func readOddsFile(path string, logger zerolog.Logger) ([]models.Fight, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open odds file: %w", err)
	}
	defer f.Close()

	fights, err := feed.ParseOddsCSV(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fights, nil
}

// parseProbabilities reads "60,40" pairs; no pairs means 50/50 everywhere
func parseProbabilities(values []string) ([]models.ProbabilityPair, error) {
	if len(values) == 0 {
		return nil, nil
	}
	pairs := make([]models.ProbabilityPair, len(values))
	for i, v := range values {
		parts := splitList(v)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --prob %q: want fighter,opponent", v)
		}
		for j, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid --prob %q: %w", v, err)
			}
			pairs[i][j] = n
		}
	}
	return pairs, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
