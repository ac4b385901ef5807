package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/fizzy-mcp/internal/config"
	"github.com/teemow/fizzy-mcp/internal/fizzy"
	"github.com/teemow/fizzy-mcp/internal/orchestrator"
	"github.com/teemow/fizzy-mcp/internal/server"
)

// cleanupOptions collects the flags of the cleanup command.
type cleanupOptions struct {
	configFile    string
	debug         bool
	account       string
	cards         string
	board         string
	column        string
	tag           string
	olderThanDays int
	yes           bool
}

func newCleanupCmd() *cobra.Command {
	var opts cleanupOptions

	cmd := &cobra.Command{
		Use:   "cleanup [card numbers...]",
		Short: "Close stale Fizzy cards in bulk",
		Long: `Close Fizzy cards in bulk, either by number or by filter.

Filters are combined: --board, --column, --tag and --older-than-days select
the open cards that match all of them. Card numbers cannot be combined with
filters.

Without --yes the matching cards are only listed.`,
		Example: `  fizzy-mcp cleanup --board b1 --older-than-days 30
  fizzy-mcp cleanup --tag stale --yes
  fizzy-mcp cleanup 12 15 --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseCardNumbers(append(args, parseCommaSeparatedList(opts.cards)...))
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger := newLogger(cmd.ErrOrStderr(), opts.debug)
			cfg, err := loadConfig(opts.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			client, err := newClient(cfg, logger, nil)
			if err != nil {
				return err
			}
			sc, err := server.NewServerContext(ctx, client, server.WithLogger(logger))
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			params := orchestrator.BulkCloseParams{
				Numbers:       numbers,
				BoardID:       opts.board,
				ColumnID:      opts.column,
				Tag:           opts.tag,
				OlderThanDays: opts.olderThanDays,
				Confirm:       opts.yes,
			}
			return runCleanup(ctx, cmd.OutOrStdout(), sc, opts.account, params)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/fizzy-mcp/config.yaml)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.account, "account", "", "Account slug (default: FIZZY_ACCOUNT, then the only account of the token)")
	cmd.Flags().StringVar(&opts.cards, "cards", "", "Comma-separated card numbers to close")
	cmd.Flags().StringVar(&opts.board, "board", "", "Only cards on this board")
	cmd.Flags().StringVar(&opts.column, "column", "", "Only cards in this column")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Only cards with this tag")
	cmd.Flags().IntVar(&opts.olderThanDays, "older-than-days", 0, "Only cards inactive for more than this many days")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Close the cards instead of listing them")

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// runCleanup resolves the account and previews or closes the selected cards.
func runCleanup(ctx context.Context, w io.Writer, sc *server.ServerContext, account string, params orchestrator.BulkCloseParams) error {
	slug, err := sc.ResolveAccount(ctx, account)
	if err != nil {
		return err
	}

	if !params.Confirm {
		preview, err := sc.Orchestrator().BulkCandidates(ctx, slug, params)
		if err != nil {
			return describe(err, slug)
		}
		for _, c := range preview.Candidates {
			if c.LastActiveAt.IsZero() {
				fmt.Fprintf(w, "#%d\t%s\n", c.Number, c.Title)
				continue
			}
			fmt.Fprintf(w, "#%d\t%s\t(last active %s)\n", c.Number, c.Title, c.LastActiveAt.Format("2006-01-02"))
		}
		fmt.Fprintf(w, "%d card(s) would be closed in account %s; rerun with --yes to close them\n", preview.Total, slug)
		return nil
	}

	result, err := sc.Orchestrator().BulkClose(ctx, slug, params)
	if err != nil {
		return describe(err, slug)
	}
	for _, n := range result.Closed {
		fmt.Fprintf(w, "closed #%d\n", n)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(w, "failed #%d: %s\n", f.Number, f.Error)
	}
	fmt.Fprintf(w, "closed %d of %d card(s) in account %s\n", result.SuccessCount, result.Total, slug)

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d card(s) could not be closed", len(result.Failed))
	}
	return nil
}

func parseCardNumbers(values []string) ([]int, error) {
	var numbers []int
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid card number %q", v)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

func describe(err error, slug string) error {
	return errors.New(fizzy.Describe(err, slug))
}
