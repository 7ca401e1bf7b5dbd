package presentation

import (
	"github.com/spf13/viper"
)

// ButtonLabels holds the button texts of the registration card.
type ButtonLabels struct {
	Join         string `mapstructure:"join"`
	Maybe        string `mapstructure:"maybe"`
	Decline      string `mapstructure:"decline"`
	Voters       string `mapstructure:"voters"`
	Refresh      string `mapstructure:"refresh"`
	OriginalPost string `mapstructure:"original_post"`
}

// MessageTexts holds the user-facing message strings.
type MessageTexts struct {
	RegistrationTitle string `mapstructure:"registration_title"`
	VoteRecorded      string `mapstructure:"vote_recorded"`
	Refreshed         string `mapstructure:"refreshed"`
	VotersListTitle   string `mapstructure:"voters_list_title"`
	NoVotesYet        string `mapstructure:"no_votes_yet"`
	VoteRequired      string `mapstructure:"vote_required"`
	JoinLabel         string `mapstructure:"join_label"`
	MaybeLabel        string `mapstructure:"maybe_label"`
	DeclineLabel      string `mapstructure:"decline_label"`
	ChangedMind       string `mapstructure:"changed_mind"`
	RateLimited       string `mapstructure:"rate_limited"` // takes the remaining seconds
	TryAgainLater     string `mapstructure:"try_again_later"`
}

// Translations bundles all strings for one language.
type Translations struct {
	Buttons  ButtonLabels `mapstructure:"buttons"`
	Messages MessageTexts `mapstructure:"messages"`
}

// baseTranslations is the built-in English set, used directly and as the
// fallback for any language the config does not provide.
var baseTranslations = Translations{
	Buttons: ButtonLabels{
		Join:         "✅ Join",
		Maybe:        "❔ Maybe",
		Decline:      "❌ No",
		Voters:       "👥 Voters",
		Refresh:      "🔄 Refresh",
		OriginalPost: "📍 Original Post",
	},
	Messages: MessageTexts{
		RegistrationTitle: "🚴 Registration",
		VoteRecorded:      "Your vote has been recorded!",
		Refreshed:         "✅ Refreshed!",
		VotersListTitle:   "👥 Voters List",
		NoVotesYet:        "No votes yet",
		VoteRequired:      "You need to vote first to see the voters list",
		JoinLabel:         "Join",
		MaybeLabel:        "Maybe",
		DeclineLabel:      "Decline",
		ChangedMind:       "🔁 Changed mind",
		RateLimited:       "Please wait %ds before voting again",
		TryAgainLater:     "An error occurred. Please try again.",
	},
}

// LoadTranslations returns the strings for a language from the merged
// configuration (translations.<lang>.*). The second return value reports
// whether the requested language was found; when it is false the base
// English set is returned and the caller knows the lookup missed. Fields a
// language leaves empty fall back to the base set individually.
func LoadTranslations(language string) (Translations, bool) {
	if language == "" || !viper.IsSet("translations."+language) {
		return baseTranslations, false
	}

	tr := baseTranslations
	if err := viper.UnmarshalKey("translations."+language, &tr); err != nil {
		return baseTranslations, false
	}
	fillEmpty(&tr)
	return tr, true
}

// fillEmpty replaces unset strings with the base-language ones so a partial
// translation file never yields blank buttons.
func fillEmpty(tr *Translations) {
	fillString(&tr.Buttons.Join, baseTranslations.Buttons.Join)
	fillString(&tr.Buttons.Maybe, baseTranslations.Buttons.Maybe)
	fillString(&tr.Buttons.Decline, baseTranslations.Buttons.Decline)
	fillString(&tr.Buttons.Voters, baseTranslations.Buttons.Voters)
	fillString(&tr.Buttons.Refresh, baseTranslations.Buttons.Refresh)
	fillString(&tr.Buttons.OriginalPost, baseTranslations.Buttons.OriginalPost)
	fillString(&tr.Messages.RegistrationTitle, baseTranslations.Messages.RegistrationTitle)
	fillString(&tr.Messages.VoteRecorded, baseTranslations.Messages.VoteRecorded)
	fillString(&tr.Messages.Refreshed, baseTranslations.Messages.Refreshed)
	fillString(&tr.Messages.VotersListTitle, baseTranslations.Messages.VotersListTitle)
	fillString(&tr.Messages.NoVotesYet, baseTranslations.Messages.NoVotesYet)
	fillString(&tr.Messages.VoteRequired, baseTranslations.Messages.VoteRequired)
	fillString(&tr.Messages.JoinLabel, baseTranslations.Messages.JoinLabel)
	fillString(&tr.Messages.MaybeLabel, baseTranslations.Messages.MaybeLabel)
	fillString(&tr.Messages.DeclineLabel, baseTranslations.Messages.DeclineLabel)
	fillString(&tr.Messages.ChangedMind, baseTranslations.Messages.ChangedMind)
	fillString(&tr.Messages.RateLimited, baseTranslations.Messages.RateLimited)
	fillString(&tr.Messages.TryAgainLater, baseTranslations.Messages.TryAgainLater)
}

func fillString(s *string, base string) {
	if *s == "" {
		*s = base
	}
}
