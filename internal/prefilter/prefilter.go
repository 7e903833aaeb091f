// Package prefilter removes obviously irrelevant postings before any paid
// call. Four independent heuristic gates: seniority, location, employment
// type, and salary overlap. Cheap elimination first is the entire point of
// this stage.
package prefilter

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-match-agent/internal/config"
	"github.com/jonathan/job-match-agent/internal/types"
)

// seniorityMarker maps a title keyword to a seniority level. Markers with
// wholeWord set must appear as a whole word ("intern" must not match
// "international"); the rest match as substrings.
type seniorityMarker struct {
	keyword   string
	level     int
	wholeWord bool
}

// Levels: 0=intern, 1=junior, 3=senior, 4=staff, 5=principal, 6=director,
// 7=vp, 8=chief. When multiple markers match, the highest level wins.
var seniorityMarkers = []seniorityMarker{
	{"internship", 0, false},
	{"intern", 0, true},
	{"junior", 1, false},
	{"entry", 1, true},
	{"associate", 1, false},
	{"senior", 3, false},
	{"sr.", 3, false},
	{"sr ", 3, false},
	{"staff", 4, false},
	{"principal", 5, false},
	{"distinguished", 5, false},
	{"fellow", 5, true},
	{"director", 6, false},
	{"head of", 6, false},
	{"vice president", 7, false},
	{"vp ", 7, false},
	{" vp", 7, false},
	{"chief", 8, true},
	{" cto", 8, false},
	{" cio", 8, false},
}

// levelRange is the inclusive band of acceptable seniority levels.
type levelRange struct {
	min, max int
}

var levelRanges = map[string]levelRange{
	"entry":     {0, 2}, // intern, junior, mid
	"mid":       {1, 3}, // junior, mid, senior
	"senior":    {2, 4}, // mid, senior, staff
	"lead":      {3, 5}, // senior, staff, principal
	"executive": {5, 8}, // principal and up
}

// employmentAliases normalizes common employment type spellings to the
// canonical set: FULLTIME, PARTTIME, CONTRACT, INTERNSHIP, TEMPORARY.
var employmentAliases = map[string]string{
	"full-time":  "FULLTIME",
	"full time":  "FULLTIME",
	"fulltime":   "FULLTIME",
	"part-time":  "PARTTIME",
	"part time":  "PARTTIME",
	"parttime":   "PARTTIME",
	"contract":   "CONTRACT",
	"contractor": "CONTRACT",
	"freelance":  "CONTRACT",
	"intern":     "INTERNSHIP",
	"internship": "INTERNSHIP",
	"temporary":  "TEMPORARY",
	"temp":       "TEMPORARY",
}

var remoteKeywords = []string{"remote", "anywhere", "distributed", "work from home"}

var locationSplit = regexp.MustCompile(`[,\s]+`)

// wholeWordRes holds precompiled word-boundary patterns for the markers
// that require whole-word matching.
var wholeWordRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp)
	for _, m := range seniorityMarkers {
		if m.wholeWord {
			res[m.keyword] = regexp.MustCompile(`\b` + regexp.QuoteMeta(m.keyword) + `\b`)
		}
	}
	return res
}()

// DetectSeniority scans a job title against the marker table and returns
// the detected level, or -1 when the title carries no marker.
func DetectSeniority(title string) int {
	// Pad so the space-anchored markers (" vp", "sr ") can match at the edges
	padded := " " + strings.ToLower(title) + " "

	detected := -1
	for _, m := range seniorityMarkers {
		var matched bool
		if m.wholeWord {
			matched = wholeWordRes[m.keyword].MatchString(padded)
		} else {
			matched = strings.Contains(padded, m.keyword)
		}
		if matched && m.level > detected {
			detected = m.level
		}
	}
	return detected
}

// NormalizeEmploymentType maps an employment type string to its canonical
// form; unknown values are uppercased as-is.
func NormalizeEmploymentType(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := employmentAliases[lower]; ok {
		return canonical
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}

// PreFilter removes obviously irrelevant postings before embedding and
// scoring. All gates are pure; no I/O happens here.
type PreFilter struct {
	prefs  *config.Preferences
	logger *zap.Logger
}

// New creates a PreFilter bound to the given preferences. A nil logger
// disables logging.
func New(prefs *config.Preferences, logger *zap.Logger) *PreFilter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreFilter{prefs: prefs, logger: logger}
}

// Filter applies all gates and returns the surviving postings in order.
// The target title is advisory and currently unused.
func (f *PreFilter) Filter(postings []types.Posting, targetTitle string) []types.Posting {
	_ = targetTitle

	var seniorityDropped, locationDropped, employmentDropped, salaryDropped int

	result := make([]types.Posting, 0, len(postings))
	for _, p := range postings {
		if !f.passesSeniority(p.Title) {
			seniorityDropped++
			continue
		}
		if !f.passesLocation(p.Location) {
			locationDropped++
			continue
		}
		if !f.passesEmploymentType(p.EmploymentType) {
			employmentDropped++
			continue
		}
		if !f.passesSalary(p.SalaryMin, p.SalaryMax) {
			salaryDropped++
			continue
		}
		result = append(result, p)
	}

	dropped := len(postings) - len(result)
	if dropped > 0 {
		f.logger.Info("pre-filtered postings",
			zap.Int("initial", len(postings)),
			zap.Int("surviving", len(result)),
			zap.Int("seniority_dropped", seniorityDropped),
			zap.Int("location_dropped", locationDropped),
			zap.Int("employment_dropped", employmentDropped),
			zap.Int("salary_dropped", salaryDropped),
		)
	} else {
		f.logger.Info("pre-filter passed all postings", zap.Int("count", len(postings)))
	}

	return result
}

// passesSeniority checks the detected title level against the inclusive
// band for the user's experience level. Unmarked titles always pass.
func (f *PreFilter) passesSeniority(title string) bool {
	level := DetectSeniority(title)
	if level < 0 {
		return true
	}

	band, ok := levelRanges[f.prefs.ExperienceLevel]
	if !ok {
		band = levelRange{0, 8}
	}
	return level >= band.min && level <= band.max
}

// passesLocation checks the posting location against preferred and excluded
// locations. The exclusion list drops case-insensitive substring matches
// unconditionally; remote-looking or missing locations otherwise pass.
func (f *PreFilter) passesLocation(jobLocation string) bool {
	locLower := strings.ToLower(jobLocation)

	// Exclusions apply regardless of everything else
	for _, excl := range f.prefs.ExcludedLocations {
		excl = strings.ToLower(strings.TrimSpace(excl))
		if excl != "" && locLower != "" && strings.Contains(locLower, excl) {
			return false
		}
	}

	if jobLocation == "" || len(f.prefs.Locations) == 0 {
		return true
	}

	for _, kw := range remoteKeywords {
		if strings.Contains(locLower, kw) {
			return true
		}
	}

	userLower := make([]string, 0, len(f.prefs.Locations))
	for _, u := range f.prefs.Locations {
		userLower = append(userLower, strings.ToLower(u))
	}

	// If the user wants remote, non-remote postings are still candidates for
	// the user's other preferred locations; with only "Remote" preferred they
	// pass outright, since location text is unreliable. Recall over precision.
	if containsString(userLower, "remote") {
		nonRemote := make([]string, 0, len(userLower))
		for _, u := range userLower {
			if u != "remote" {
				nonRemote = append(nonRemote, u)
			}
		}
		if len(nonRemote) == 0 {
			return true
		}
		userLower = nonRemote
	}

	// Token overlap: any significant word (>2 chars) of a preferred location
	// appearing in the posting location counts as a match.
	for _, userLoc := range userLower {
		for _, word := range locationSplit.Split(userLoc, -1) {
			if len(word) > 2 && strings.Contains(locLower, word) {
				return true
			}
		}
	}

	return false
}

// passesEmploymentType intersects the normalized posting type with the
// user's preferred set. Empty preference or missing posting type passes.
func (f *PreFilter) passesEmploymentType(jobType string) bool {
	if len(f.prefs.EmploymentTypes) == 0 || jobType == "" {
		return true
	}

	normalized := NormalizeEmploymentType(jobType)
	for _, pref := range f.prefs.EmploymentTypes {
		if NormalizeEmploymentType(pref) == normalized {
			return true
		}
	}
	return false
}

// passesSalary checks inclusive overlap between the posting's salary range
// and the user's. A missing range on either side passes; a missing bound is
// treated as unbounded on that side.
func (f *PreFilter) passesSalary(jobMin, jobMax *int) bool {
	if jobMin == nil && jobMax == nil {
		return true
	}
	if f.prefs.SalaryMin == nil && f.prefs.SalaryMax == nil {
		return true
	}

	jobLow, jobHigh := boundsOf(jobMin, jobMax)
	userLow, userHigh := boundsOf(f.prefs.SalaryMin, f.prefs.SalaryMax)

	return jobLow <= userHigh && userLow <= jobHigh
}

func boundsOf(min, max *int) (int, int) {
	low := 0
	high := int(^uint(0) >> 1)
	if min != nil {
		low = *min
	}
	if max != nil {
		high = *max
	}
	return low, high
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
