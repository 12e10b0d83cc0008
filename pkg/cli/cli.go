package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/screenbase/screenbase/pkg/auth"
	"github.com/screenbase/screenbase/pkg/catalog"
	"github.com/screenbase/screenbase/pkg/comments"
	"github.com/screenbase/screenbase/pkg/config"
	"github.com/screenbase/screenbase/pkg/observability/logger"
	"github.com/screenbase/screenbase/pkg/store/mongodb"
	"github.com/screenbase/screenbase/pkg/users"
	"github.com/screenbase/screenbase/pkg/version"
)

// Options configures the root command.
type Options struct {
	Name        string
	Description string
	ConfigPath  string
	EnvPrefix   string
}

// NewRootCommand builds the screenbase command tree: catalog queries,
// comment reports, session management and operational helpers, all wired
// through the shared config, logger and store adapter.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "SCREENBASE"
	}

	root := &cobra.Command{
		Use:           opts.Name,
		Short:         opts.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var cfgPath string
	root.PersistentFlags().StringVarP(&cfgPath, "config-file", "c", opts.ConfigPath, "config file path")

	env := opts.EnvPrefix
	root.AddCommand(
		newSearchCommand(&cfgPath, env),
		newMovieCommand(&cfgPath, env),
		newFacetsCommand(&cfgPath, env),
		newByCountryCommand(&cfgPath, env),
		newTopCommentersCommand(&cfgPath, env),
		newSessionCommand(&cfgPath, env),
		newEnsureIndexesCommand(&cfgPath, env),
		newHealthcheckCommand(&cfgPath, env),
		newVersionCommand(opts.Name),
	)
	return root
}

// runtime holds the per-invocation wiring shared by every command.
type runtime struct {
	cfg      *config.Config
	log      *logger.ZapLogger
	adapter  *mongodb.Adapter
	movies   *catalog.MovieRepository
	comments *comments.Repository
	users    *users.Repository
}

func newRuntime(cfgPath, envPrefix string) (*runtime, error) {
	cfg, err := config.NewViperLoader(cfgPath, envPrefix).Load()
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLogLevel(cfg.Observability.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseLogFormat(cfg.Observability.LogFormat)
	if err != nil {
		return nil, err
	}
	log, err := logger.NewZapLogger(logger.Config{Level: level, Format: format})
	if err != nil {
		return nil, err
	}

	adapter, err := mongodb.NewAdapter(mongodb.Config{
		URL:              cfg.Database.URL,
		Database:         cfg.Database.Namespace,
		ConnectTimeout:   cfg.Database.ConnectTimeout,
		OperationTimeout: cfg.Database.OperationTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		log:      log,
		adapter:  adapter,
		movies:   catalog.NewMovieRepository(adapter, log),
		comments: comments.NewRepository(adapter, log),
		users:    users.NewRepository(adapter, log),
	}, nil
}

func (rt *runtime) close() {
	_ = rt.adapter.Close()
	_ = rt.log.Sync()
}

// requestContext tags the invocation with a request id so every log line
// of one command run can be correlated.
func requestContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.ContextWithRequestID(ctx, uuid.NewString())
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSearchCommand(cfgPath *string, envPrefix string) *cobra.Command {
	var (
		text     string
		cast     string
		genre    string
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search movies by text, cast or genre",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			filters := catalog.Filters{
				Text:  text,
				Cast:  catalog.ParseMemberList(cast),
				Genre: catalog.ParseMemberList(genre),
			}
			if pageSize <= 0 {
				pageSize = rt.cfg.Catalog.PageSize
			}
			result := rt.movies.Search(requestContext(cmd), filters, catalog.Page{Number: page, Size: pageSize})
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "full-text search query")
	cmd.Flags().StringVar(&cast, "cast", "", `cast members, comma separated ("Tom Hanks, Meg Ryan")`)
	cmd.Flags().StringVar(&genre, "genre", "", "genres, comma separated")
	cmd.Flags().IntVar(&page, "page", 0, "zero-indexed page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "movies per page (defaults to catalog.page_size)")
	return cmd
}

func newMovieCommand(cfgPath *string, envPrefix string) *cobra.Command {
	return &cobra.Command{
		Use:   "movie <id>",
		Short: "Fetch one movie with its comments embedded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			movie, err := rt.movies.GetByID(requestContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printJSON(movie)
		},
	}
}

func newFacetsCommand(cfgPath *string, envPrefix string) *cobra.Command {
	var (
		cast     string
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "facets",
		Short: "Faceted movie search over a cast filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			if pageSize <= 0 {
				pageSize = rt.cfg.Catalog.PageSize
			}
			result, err := rt.movies.FacetedSearch(requestContext(cmd),
				catalog.Filters{Cast: catalog.ParseMemberList(cast)},
				catalog.Page{Number: page, Size: pageSize},
			)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&cast, "cast", "", "cast members, comma separated (required)")
	cmd.Flags().IntVar(&page, "page", 0, "zero-indexed page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "movies per page (defaults to catalog.page_size)")
	return cmd
}

func newByCountryCommand(cfgPath *string, envPrefix string) *cobra.Command {
	var countries []string
	cmd := &cobra.Command{
		Use:   "by-country",
		Short: "List movie titles produced in the given countries",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			return printJSON(rt.movies.ByCountry(requestContext(cmd), countries))
		},
	}
	cmd.Flags().StringSliceVar(&countries, "country", nil, "country name (repeatable)")
	return cmd
}

func newTopCommentersCommand(cfgPath *string, envPrefix string) *cobra.Command {
	return &cobra.Command{
		Use:   "top-commenters",
		Short: "Report the most active commenters",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			reports, err := rt.comments.MostActiveCommenters(requestContext(cmd))
			if err != nil {
				return err
			}
			return printJSON(reports)
		},
	}
}

func newSessionCommand(cfgPath *string, envPrefix string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage user sessions",
	}

	var loginEmail string
	login := &cobra.Command{
		Use:   "login",
		Short: "Mint a session token for a user and store it",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			minter, err := auth.NewTokenMinter(rt.cfg.Auth.SigningKey, rt.cfg.Auth.TokenTTL)
			if err != nil {
				return fmt.Errorf("auth.signing_key must be configured for login: %w", err)
			}
			token, err := minter.Mint(loginEmail, time.Now())
			if err != nil {
				return err
			}
			if err := rt.users.Login(requestContext(cmd), loginEmail, token); err != nil {
				return err
			}
			return printJSON(map[string]string{"email": loginEmail, "token": token})
		},
	}
	login.Flags().StringVar(&loginEmail, "email", "", "user email (required)")
	_ = login.MarkFlagRequired("email")

	var logoutEmail string
	logout := &cobra.Command{
		Use:   "logout",
		Short: "Delete the session for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.users.Logout(requestContext(cmd), logoutEmail)
		},
	}
	logout.Flags().StringVar(&logoutEmail, "email", "", "user email (required)")
	_ = logout.MarkFlagRequired("email")

	cmd.AddCommand(login, logout)
	return cmd
}

func newEnsureIndexesCommand(cfgPath *string, envPrefix string) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the indexes the catalog queries rely on",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx := requestContext(cmd)
			if err := rt.movies.EnsureIndexes(ctx); err != nil {
				return err
			}
			if err := rt.comments.EnsureIndexes(ctx); err != nil {
				return err
			}
			if err := rt.users.EnsureIndexes(ctx); err != nil {
				return err
			}
			rt.log.Info("indexes ensured")
			return nil
		},
	}
}

func newHealthcheckCommand(cfgPath *string, envPrefix string) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Verify the store connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(*cfgPath, envPrefix)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.adapter.HealthCheck(requestContext(cmd))
		},
	}
}

func newVersionCommand(serviceName string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(version.Current(serviceName))
		},
	}
}
