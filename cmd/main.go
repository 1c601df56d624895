package main

import (
	"context"
	"log"
	"os"

	"github.com/Tomas-vilte/RepoVigia/internal/cli/command/scan"
	"github.com/Tomas-vilte/RepoVigia/internal/i18n"
	"github.com/urfave/cli/v3"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Error iniciando la cli: %v", err)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func initializeApp() (*cli.Command, error) {
	// Única lectura de entorno fuera de config: el idioma hace falta antes
	// de armar la cli, y Load lo vuelve a capturar para los componentes.
	lang := os.Getenv("VIGIA_LANG")
	if lang == "" {
		lang = "en"
	}

	translations, err := i18n.NewTranslations(lang)
	if err != nil {
		return nil, err
	}

	commands := []*cli.Command{
		scan.NewCommandFactory().CreateCommand(translations),
	}

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:        "repovigia",
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Description: translations.GetMessage("app_description", 0, nil),
		Commands:    commands,
	}, nil
}
