package i18n

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type Translations struct {
	bundle   *i18n.Bundle
	localize *i18n.Localizer
}

func NewTranslations(defaultLang string) (*Translations, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	bundle.MustParseMessageFileBytes([]byte(defaultMessages), "default.en.toml")

	files, err := filepath.Glob("locales/active.*.toml")
	if err != nil {
		return nil, fmt.Errorf("error reading locales: %w", err)
	}

	for _, file := range files {
		if _, err := bundle.LoadMessageFile(file); err != nil {
			return nil, fmt.Errorf("error loading locale file %s: %w", file, err)
		}
	}

	localize := i18n.NewLocalizer(bundle, defaultLang)

	return &Translations{
		bundle:   bundle,
		localize: localize,
	}, nil
}

func (t *Translations) SetLanguage(lang string) error {
	for _, tag := range t.bundle.LanguageTags() {
		if tag.String() == lang {
			t.localize = i18n.NewLocalizer(t.bundle, lang)
			return nil
		}
	}
	return fmt.Errorf("language '%s' not supported", lang)
}

func (t *Translations) GetMessage(messageID string, count int, templateData map[string]interface{}) string {
	localized, err := t.localize.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID: messageID,
		},
		PluralCount:  count,
		TemplateData: templateData,
	})
	if err != nil {
		return "Translation missing: " + messageID
	}
	return localized
}

var defaultMessages = `
	[app_usage]
	other = "Watch a repository and get notified about security-relevant changes"

	[app_description]
	other = "RepoVigia mirrors a git repository, collects the commits since the last scan, asks an LLM endpoint whether the changes are security relevant and emails the verdict."

	[scan_command_usage]
	other = "Run one scan cycle against the configured repository"

	[scan_command_description]
	other = "Mirrors the repository, harvests the commits since the last checkpoint, sends them for analysis and emails the result. The checkpoint only advances when the run completes."

	[env_flag_usage]
	other = "Path to an env file to load before reading the configuration"

	[timeout_flag_usage]
	other = "Abort the run after this duration (0 means no timeout)"

	[verbose_flag_usage]
	other = "Log progress details, not only warnings"

	[debug_flag_usage]
	other = "Log everything, including debug details"

	[scan_starting]
	other = "Scanning {{.Repo}} (branch: {{.Branch}})..."

	[scan_no_changes]
	other = "No changes since the last scan. Checkpoint advanced, nothing to report."

	[scan_email_sent]
	other = "Analysis sent to {{.Recipient}}."

	[scan_failed]
	other = "Scan failed: {{.Error}}"

	[mirror_update_warning]
	other = "Could not update the mirror, scanning the existing copy: {{.Error}}"

	[help_command_usage]
	other = "Show help"
`
