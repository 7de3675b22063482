package intent

import (
	"context"
	"regexp"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"portfolio-assistant-be/internal/pkg/logger"
)

// Match patterns reported alongside a detection result.
const (
	PatternDirectMatch          = "direct_match"
	PatternAliasMatch           = "alias_match"
	PatternGeneralInfo          = "general_info"
	PatternIntentMatch          = "intent_pattern_match"
	PatternIntentWithoutMatch   = "intent_without_match"
	PatternGeneralProjectIntent = "general_project_intent"
)

const titleCacheKey = "project_titles"

// Intent is the classification of a single user query.
type Intent struct {
	IsProjectQuery bool
	ProjectName    string
	Confidence     float64
	MatchPattern   string
}

// TitleSource supplies the canonical set of project titles.
// ProjectRepository satisfies it.
type TitleSource interface {
	Titles(ctx context.Context) ([]string, error)
}

type aliasEntry struct {
	Alias string
	Title string
}

// Static shorthand visitors actually type. Longer aliases come first so
// "modern sniper" wins over "sniper".
var defaultAliases = []aliasEntry{
	{"modern sniper", "Modern Day Sniper"},
	{"day sniper", "Modern Day Sniper"},
	{"sniper", "Modern Day Sniper"},
	{"mds", "Modern Day Sniper"},
	{"real estate platform", "Swyvvl"},
	{"swyvvl platform", "Swyvvl"},
}

// Queries about Jordan rather than a project. Checked before free-text
// pattern extraction so "tell me about your approach" is never parsed as a
// project named "approach".
var generalInfoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:what|which)\b.*\b(?:skills?|technolog\w*|stack|languages?)\b`),
	regexp.MustCompile(`(?i)\btell me (?:more )?about (?:your|jordan'?s?)\b`),
	regexp.MustCompile(`(?i)\bwho (?:is|are) (?:you|jordan)\b`),
	regexp.MustCompile(`(?i)\b(?:your|jordan'?s?) (?:background|experience|bio|story|education|history|resume)\b`),
	regexp.MustCompile(`(?i)\bhow (?:can|do) i (?:contact|reach|hire)\b`),
	regexp.MustCompile(`(?i)\babout (?:the )?(?:author|developer|designer|owner) of\b`),
}

// Phrasings that name a project in free text. Group 1 is the candidate name.
var projectIntentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)tell me (?:more )?about (?:the )?(.+?)(?: project)?\s*[?.!]*$`),
	regexp.MustCompile(`(?i)\bhow (?:did you|was) (?:build|built|make|made|develop|developed|create|created)?\s*(?:the )?(.+?)(?: project)?\s*[?.!]*$`),
	regexp.MustCompile(`(?i)\b(?:details|more) (?:about|on) (?:the )?(.+?)\s*[?.!]*$`),
	regexp.MustCompile(`(?i)\bshow me (?:the )?(.+?)\s*[?.!]*$`),
	regexp.MustCompile(`(?i)\bwhat is (?:the )?(.+?)\s*[?.!]*$`),
}

var genericProjectVocabulary = []string{
	"project", "work", "portfolio", "case study", "designed", "developed", "created",
}

// Detector classifies queries against the known project set. Titles are read
// through a TTL cache so repeated detections do not hit the database.
type Detector struct {
	titles  TitleSource
	aliases []aliasEntry
	cache   *gocache.Cache
	ttl     time.Duration
	logger  logger.ILogger
}

func NewDetector(titles TitleSource, ttl time.Duration, log logger.ILogger) *Detector {
	return &Detector{
		titles:  titles,
		aliases: defaultAliases,
		cache:   gocache.New(ttl, 2*ttl),
		ttl:     ttl,
		logger:  log,
	}
}

// knownTitles reads the project-title list through the cache. A source
// failure logs and returns nil so detection degrades instead of erroring.
func (d *Detector) knownTitles(ctx context.Context) []string {
	if cached, found := d.cache.Get(titleCacheKey); found {
		return cached.([]string)
	}

	titles, err := d.titles.Titles(ctx)
	if err != nil {
		d.logger.Warn("intent.Detector", "failed to load project titles", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	d.cache.Set(titleCacheKey, titles, d.ttl)
	return titles
}

// DetectProjectQuery classifies a query, first match wins: direct title
// substring, alias, general-info override, free-text pattern with fuzzy
// resolution, then generic project vocabulary. It never returns an error.
func (d *Detector) DetectProjectQuery(ctx context.Context, query string) Intent {
	lowered := strings.ToLower(query)
	titles := d.knownTitles(ctx)

	// Iteration order decides ties between titles that contain each other.
	for _, title := range titles {
		if title == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(title)) {
			return Intent{
				IsProjectQuery: true,
				ProjectName:    title,
				Confidence:     1.0,
				MatchPattern:   PatternDirectMatch,
			}
		}
	}

	for _, entry := range d.aliases {
		if strings.Contains(lowered, entry.Alias) {
			return Intent{
				IsProjectQuery: true,
				ProjectName:    entry.Title,
				Confidence:     0.9,
				MatchPattern:   PatternAliasMatch,
			}
		}
	}

	for _, pattern := range generalInfoPatterns {
		if pattern.MatchString(query) {
			return Intent{
				IsProjectQuery: false,
				Confidence:     0.9,
				MatchPattern:   PatternGeneralInfo,
			}
		}
	}

	for _, pattern := range projectIntentPatterns {
		matches := pattern.FindStringSubmatch(query)
		if matches == nil {
			continue
		}
		candidate := cleanCandidate(matches[1])
		if candidate == "" {
			continue
		}

		bestTitle := ""
		bestScore := 0.0
		for _, title := range titles {
			if score := Similarity(candidate, title); score > bestScore {
				bestTitle = title
				bestScore = score
			}
		}
		if bestScore > 0.6 {
			return Intent{
				IsProjectQuery: true,
				ProjectName:    bestTitle,
				Confidence:     bestScore,
				MatchPattern:   PatternIntentMatch,
			}
		}
		return Intent{
			IsProjectQuery: true,
			Confidence:     0.5,
			MatchPattern:   PatternIntentWithoutMatch,
		}
	}

	for _, word := range genericProjectVocabulary {
		if strings.Contains(lowered, word) {
			return Intent{
				IsProjectQuery: true,
				Confidence:     0.3,
				MatchPattern:   PatternGeneralProjectIntent,
			}
		}
	}

	return Intent{}
}

func cleanCandidate(raw string) string {
	candidate := strings.TrimSpace(raw)
	candidate = strings.Trim(candidate, "?!.\"'")
	candidate = strings.TrimPrefix(strings.ToLower(candidate), "the ")
	return strings.TrimSpace(candidate)
}
