// internal/relevance/prompt.go
// Shared relevance-check prompts for all LLM providers
package relevance

import "fmt"

// systemPrompt instructs every provider to answer with a bare Yes or No
const systemPrompt = "You are a news classifier. Determine if an article is about " +
	"HEAT or HEATWAVE impact in a SPECIFIC REGION of INDIA. " +
	"Answer ONLY 'Yes' or 'No'."

const userPromptTemplate = `RELEVANT (Yes):
- Heatwave or extreme heat events in %[1]s (or %[2]s if given)
- Temperature records or forecasts showing unusual heat in %[1]s
- Heat-related health issues (heatstroke, heat deaths, dehydration) in %[1]s
- Heat-caused infrastructure problems (power outages, water shortages) in %[1]s
- Government heat advisories for %[1]s
- National-level heat news that explicitly mentions %[1]s

NOT RELEVANT (No):
- Heat news about a DIFFERENT Indian state
- Heat news from outside India
- General weather not about heat (rain, cold, fog, storms)
- Products, entertainment, or sports mentioning "heat"
- Articles where heat/temperature is mentioned only incidentally

State: %[1]s
District: %[2]s
Title: %[3]s
Content (first 500 chars): %[4]s

Answer ONLY "Yes" or "No".`

// buildRelevancePrompt assembles the user prompt from the article's title,
// an optional text preview, and geographic context.
func buildRelevancePrompt(title, text, state, district string) string {
	preview := text
	if len([]rune(preview)) > 500 {
		preview = string([]rune(preview)[:500])
	}
	if preview == "" {
		preview = "(no text)"
	}
	if state == "" {
		state = "(unknown)"
	}
	if district == "" {
		district = "(not specified)"
	}
	return fmt.Sprintf(userPromptTemplate, state, district, title, preview)
}

const districtSystemPrompt = "You extract geographic information from Indian news articles. " +
	"You can read all Indian languages and scripts."

// buildDistrictPrompt asks which single district an article is primarily
// about, constrained to the supplied district list.
func buildDistrictPrompt(title, text, state string, districts []string) string {
	preview := text
	if len([]rune(preview)) > 500 {
		preview = string([]rune(preview)[:500])
	}
	list := ""
	for i, d := range districts {
		if i > 0 {
			list += ", "
		}
		list += d
	}
	return fmt.Sprintf(
		"Which single district in %s is this article PRIMARILY about?\n"+
			"Districts: %s\n\n"+
			"Title: %s\n"+
			"Text: %s\n\n"+
			"Rules:\n"+
			"- Reply with ONLY the district name from the list above.\n"+
			"- If the article mentions multiple districts or is about the state as a whole, reply ONLY \"None\".\n"+
			"- If you cannot determine the district, reply ONLY \"None\".",
		state, list, title, preview,
	)
}
