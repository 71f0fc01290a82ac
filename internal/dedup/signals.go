// internal/dedup/signals.go
// Fast pre-extraction title filter based on multilingual heat-signal words
package dedup

import (
	"regexp"
	"strings"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// Heat-signal words across the collection languages. A title must contain
// at least one (case-insensitive) to be worth extracting. Only words that
// are unambiguously about heat or temperature appear here; generic words
// like "alert" or "school closed" match too much non-heat content.
var heatSignals = []string{
	// English. "loo " keeps its trailing space to avoid matching "look".
	"heat", "heatwave", "heat wave", "scorching", "sweltering",
	"sunstroke", "sun stroke", "heatstroke", "heat stroke",
	"temperature", "mercury", "celsius", "loo ",
	"drought", "water crisis", "water shortage",

	// Hindi
	"गर्मी", "लू", "तापमान", "पारा", "तापाघात", "धूप", "उष्ण", "ग्रीष्म",

	// Tamil
	"வெப்பம்", "வெப்ப அலை", "கோடை", "வெயில்",

	// Telugu
	"వేడి", "ఉష్ణ", "ఎండ", "వడదెబ్బ",

	// Bengali
	"গরম", "তাপ", "তাপমাত্রা", "দাবদাহ",

	// Marathi
	"उष्णता", "उन्हाळा", "उष्माघात", "ऊन",

	// Gujarati
	"ગરમી", "તાપમાન", "લૂ",

	// Kannada
	"ಬಿಸಿ", "ಉಷ್ಣ", "ತಾಪಮಾನ", "ಬಿಸಿಗಾಳಿ",

	// Malayalam
	"ചൂട്", "ഉഷ്ണ", "താപനില", "വെയിൽ",

	// Odia
	"ଗରମ", "ତାପମାତ୍ରା", "ଉଷ୍ଣ", "ଖରା",

	// Punjabi
	"ਗਰਮੀ", "ਤਾਪਮਾਨ", "ਲੂ",

	// Assamese
	"গৰম", "তাপমাত্ৰা",

	// Urdu
	"گرمی", "لو", "ہیٹ", "شدید گرمی",

	// Nepali
	"गर्मी", "तापक्रम", "खडेरी",
}

var heatSignalPattern = func() *regexp.Regexp {
	escaped := make([]string, len(heatSignals))
	for i, term := range heatSignals {
		escaped[i] = regexp.QuoteMeta(term)
	}
	return regexp.MustCompile("(?i)" + strings.Join(escaped, "|"))
}()

// TitleHasHeatSignal reports whether a title contains a heat-signal word
func TitleHasHeatSignal(title string) bool {
	return heatSignalPattern.MatchString(title)
}

// FilterByTitleSignal keeps only refs whose titles carry a heat signal.
// This runs before extraction (and before any LLM check) so clearly
// unrelated titles never cost a fetch.
func FilterByTitleSignal(refs []models.ArticleRef) []models.ArticleRef {
	var relevant []models.ArticleRef
	for _, ref := range refs {
		if TitleHasHeatSignal(ref.Title) {
			relevant = append(relevant, ref)
		}
	}
	logger.Info("title signal filter complete",
		"before", len(refs),
		"after", len(relevant),
		"dropped", len(refs)-len(relevant),
	)
	return relevant
}
