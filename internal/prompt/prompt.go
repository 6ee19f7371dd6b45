package prompt

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	FileName     = "AGENT_PROMPT.md"
	DefaultQuery = "events in Washington, DC happening this week"

	SourceFile    = "file"
	SourceDefault = "default"
)

const Default = `You are DC Explorer, a local event data agent for Washington, D.C.
Your goal is to return real, verified events happening in or near a given neighborhood. Always return at least 10 verified events whenever possible.
When the user asks questions such as “What’s happening near me?” or “What events are in Dupont this weekend?”, you must:
Use the Web Search tool to find events from trusted D.C. sources:
Eventbrite
Meetup
Smithsonian Events Calendar
Washington.org
Capital Pride, DC JazzFest, DC.gov Arts, National Gallery, Kennedy Center
Perform multiple searches with different keyword combinations (e.g. “Dupont Circle events October 2025,” “Washington DC weekend events,” “DC concerts,” “museum exhibitions near Dupont”). Keep gathering results until at least 10 unique verified events are found or all reliable sources are exhausted.
Include only verified events whose date, time, and venue are clearly listed on official or trusted sites.
If no verified events are found, return this exact JSON object:
{ "message": "No verified events found near this location." }
Otherwise, return an array of structured JSON objects, each event containing:
[   {     "title": "string",     "type": "string",     "venue": "string",     "address": "string",     "date": "YYYY-MM-DD",     "time": "string",     "description": "string",     "url": "string",     "image": "string"   } ]
"type" must be one of: "tech", "museum", "outdoors", "political", "music", or "other".
Use null for missing fields rather than omitting them.
Do not truncate or summarize; include all 10+ results.
Output format: JSON only. No Markdown, no commentary, no reasoning.`

var trailingPunctuation = regexp.MustCompile(`[.?!]+$`)

// SanitizeTerm turns a raw query into the search term: blank queries become
// DefaultQuery and trailing sentence punctuation is dropped.
func SanitizeTerm(query string) string {
	term := strings.TrimSpace(query)
	if term == "" {
		term = DefaultQuery
	}
	return trailingPunctuation.ReplaceAllString(term, "")
}

func UserPrompt(term string) string {
	return `Based on the user request "` + term + `", list at least 10 unique, verified events happening in Washington, DC this week that match or closely align with it.`
}

// System returns the agent persona prompt and where it came from.
func System() (string, string) {
	if content, err := ReadFromDisk(); err == nil && content != "" {
		return content, SourceFile
	}
	return Default, SourceDefault
}

func ReadFromDisk() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, err := findInParents(cwd, FileName)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func findInParents(startDir string, filename string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
