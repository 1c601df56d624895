package scan

import (
	"context"

	"github.com/Tomas-vilte/RepoVigia/internal/config"
	"github.com/Tomas-vilte/RepoVigia/internal/i18n"
	"github.com/Tomas-vilte/RepoVigia/internal/infrastructure/analysis"
	"github.com/Tomas-vilte/RepoVigia/internal/infrastructure/checkpoint"
	"github.com/Tomas-vilte/RepoVigia/internal/infrastructure/git"
	"github.com/Tomas-vilte/RepoVigia/internal/infrastructure/httpclient"
	"github.com/Tomas-vilte/RepoVigia/internal/infrastructure/mailer"
	"github.com/Tomas-vilte/RepoVigia/internal/logger"
	"github.com/Tomas-vilte/RepoVigia/internal/services"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

type CommandFactory struct{}

func NewCommandFactory() *CommandFactory {
	return &CommandFactory{}
}

func (f *CommandFactory) CreateCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:        "scan",
		Aliases:     []string{"s"},
		Usage:       t.GetMessage("scan_command_usage", 0, nil),
		Description: t.GetMessage("scan_command_description", 0, nil),
		Flags:       f.createFlags(t),
		Action:      f.createAction(t),
	}
}

func (f *CommandFactory) createFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "env-file",
			Aliases: []string{"e"},
			Usage:   t.GetMessage("env_flag_usage", 0, nil),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: t.GetMessage("timeout_flag_usage", 0, nil),
			Value: 0,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   t.GetMessage("verbose_flag_usage", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: t.GetMessage("debug_flag_usage", 0, nil),
		},
	}
}

func (f *CommandFactory) createAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		logger.Initialize(command.Bool("debug"), command.Bool("verbose"))

		cfg, err := config.Load(command.String("env-file"))
		if err != nil {
			return cli.Exit(err, 1)
		}

		if err := t.SetLanguage(cfg.Language); err != nil && cfg.Language != "en" {
			logger.Warn(ctx, "idioma no soportado, se sigue en inglés", "error", err)
		}

		if timeout := command.Duration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		store, err := checkpoint.NewSQLiteStore(cfg.DBFile, cfg.Lookback)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn(ctx, "error cerrando el store de checkpoints", "error", err)
			}
		}()

		pipeline := services.NewPipeline(services.PipelineDeps{
			Identity:  cfg.Identity,
			Recipient: cfg.ToEmail,
			Store:     store,
			Mirror:    git.NewMirror(cfg.RepoURL, cfg.Branch, cfg.MirrorPath(), cfg.Credential),
			Harvester: git.NewHarvester(cfg.MirrorPath(), cfg.Branch),
			Prompts:   services.NewPromptBuilder(cfg.ProjectDescription),
			Analyzer:  analysis.NewClient(cfg.Analysis, httpclient.NewDefaultHTTPClient()),
			Notifier:  mailer.NewSMTPNotifier(cfg.SMTP),
			Trans:     t,
		})

		color.Cyan(t.GetMessage("scan_starting", 0, map[string]interface{}{
			"Repo":   cfg.Identity.Name,
			"Branch": cfg.Identity.Branch,
		}))

		result, err := pipeline.Run(ctx)
		if err != nil {
			return cli.Exit(t.GetMessage("scan_failed", 0, map[string]interface{}{
				"Error": err,
			}), 1)
		}

		if result.NoChanges {
			color.Yellow(t.GetMessage("scan_no_changes", 0, nil))
		} else {
			color.Green(t.GetMessage("scan_email_sent", 0, map[string]interface{}{
				"Recipient": cfg.ToEmail,
			}))
		}
		return nil
	}
}
