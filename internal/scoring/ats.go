package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/job-match-agent/internal/types"
)

// Curated keyword sets for the deterministic ATS-style scorer. Matching is
// done against normalized uni/bi/trigrams, so multi-word entries match as
// phrases.

var technicalKeywords = newKeywordSet(
	// Languages
	"python", "javascript", "typescript", "java", "c++", "c#", "go", "golang",
	"rust", "ruby", "php", "swift", "kotlin", "scala", "r", "sql", "html",
	"css", "bash", "shell", "perl", "lua", "dart", "elixir", "haskell",
	"objective-c", "matlab", "julia",
	// Frameworks and libraries
	"react", "angular", "vue", "vue.js", "next.js", "nextjs", "nuxt",
	"svelte", "django", "flask", "fastapi", "express", "express.js",
	"spring", "spring boot", "rails", "ruby on rails", "laravel", "asp.net",
	".net", "node.js", "nodejs", "nestjs", "gin", "fiber",
	// AI/ML
	"machine learning", "deep learning", "natural language processing", "nlp",
	"computer vision", "tensorflow", "pytorch", "keras", "scikit-learn",
	"sklearn", "pandas", "numpy", "langchain", "llm", "large language model",
	"rag", "retrieval augmented generation", "transformers", "hugging face",
	"openai", "gpt", "bert", "fine-tuning", "prompt engineering",
	// Data
	"postgresql", "postgres", "mysql", "mongodb", "redis", "elasticsearch",
	"cassandra", "dynamodb", "sqlite", "oracle", "snowflake", "bigquery",
	"apache spark", "spark", "hadoop", "kafka", "airflow", "dbt",
	"data pipeline", "etl", "data warehouse", "data lake",
	// Cloud and infrastructure
	"aws", "amazon web services", "azure", "gcp", "google cloud",
	"docker", "kubernetes", "k8s", "terraform", "ansible", "jenkins",
	"github actions", "gitlab ci", "ci/cd", "cicd", "linux", "nginx",
	"cloudformation", "serverless", "lambda", "ecs", "eks", "fargate",
	// Tools and practices
	"git", "github", "gitlab", "bitbucket", "jira", "confluence",
	"agile", "scrum", "kanban", "tdd", "test driven development",
	"microservices", "rest", "restful", "graphql", "grpc", "api",
	"oauth", "jwt", "websocket", "rabbitmq", "celery",
	// Security
	"cybersecurity", "penetration testing", "owasp", "encryption", "ssl", "tls",
	"soc 2", "gdpr", "hipaa", "iam",
	// Mobile
	"ios", "android", "react native", "flutter", "xamarin", "swiftui",
	// DevOps/SRE
	"devops", "sre", "site reliability", "monitoring", "prometheus",
	"grafana", "datadog", "new relic", "splunk", "observability",
	"load balancing", "auto scaling",
)

var softSkillKeywords = newKeywordSet(
	"leadership", "communication", "teamwork", "collaboration",
	"problem solving", "problem-solving", "critical thinking",
	"time management", "project management", "mentoring", "coaching",
	"presentation", "stakeholder management", "cross-functional",
	"self-motivated", "detail-oriented", "analytical",
	"adaptability", "creativity", "initiative", "negotiation",
	"conflict resolution", "decision making", "decision-making",
	"strategic thinking", "customer-focused", "results-driven",
	"interpersonal", "organizational",
)

func newKeywordSet(keywords ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[kw] = struct{}{}
	}
	return set
}

var (
	separatorRe = regexp.MustCompile(`[/,;|•·\-–—]`)
	nonTokenRe  = regexp.MustCompile(`[^a-z0-9.#+\s]`)
)

// tokenize extracts normalized unigrams, bigrams, and trigrams. Dots,
// hashes, and pluses survive normalization so "node.js", "c#", and "c++"
// stay intact; edge dots are stripped per word.
func tokenize(text string) map[string]struct{} {
	cleaned := separatorRe.ReplaceAllString(strings.ToLower(text), " ")
	cleaned = nonTokenRe.ReplaceAllString(cleaned, " ")
	words := strings.Fields(cleaned)

	tokens := make(map[string]struct{})
	add := func(t string) {
		if t != "" {
			tokens[t] = struct{}{}
		}
	}

	stripped := make([]string, len(words))
	for i, w := range words {
		stripped[i] = strings.Trim(w, ".")
		add(stripped[i])
	}
	for i := 0; i+1 < len(stripped); i++ {
		add(strings.TrimSpace(stripped[i] + " " + stripped[i+1]))
	}
	for i := 0; i+2 < len(stripped); i++ {
		add(strings.TrimSpace(stripped[i] + " " + stripped[i+1] + " " + stripped[i+2]))
	}
	return tokens
}

// extractKeywords returns the technical and soft-skill keywords present in
// the text.
func extractKeywords(text string) (technical, soft map[string]struct{}) {
	tokens := tokenize(text)

	technical = make(map[string]struct{})
	for kw := range technicalKeywords {
		if _, ok := tokens[kw]; ok {
			technical[kw] = struct{}{}
		}
	}
	soft = make(map[string]struct{})
	for kw := range softSkillKeywords {
		if _, ok := tokens[kw]; ok {
			soft[kw] = struct{}{}
		}
	}
	return technical, soft
}

// ComputeATSScore measures keyword overlap between a resume and a job
// posting without any model call. The score weights technical keyword
// coverage at 70% and soft-skill coverage at 30%; a category the posting
// never mentions counts as fully covered.
func ComputeATSScore(resumeText, jobDescription, jobRequirements string) *types.ATSScore {
	jobText := jobDescription
	if jobRequirements != "" {
		jobText += "\n" + jobRequirements
	}

	jobTechnical, jobSoft := extractKeywords(jobText)
	totalJobKeywords := len(jobTechnical) + len(jobSoft)
	if totalJobKeywords == 0 {
		return &types.ATSScore{
			MatchedKeywords: []string{},
			MissingKeywords: []string{},
		}
	}

	resumeTechnical, resumeSoft := extractKeywords(resumeText)

	matchedTechnical := intersect(jobTechnical, resumeTechnical)
	matchedSoft := intersect(jobSoft, resumeSoft)

	var matched, missing []string
	for kw := range jobTechnical {
		if _, ok := matchedTechnical[kw]; ok {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	for kw := range jobSoft {
		if _, ok := matchedSoft[kw]; ok {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	techPct := 100.0
	if len(jobTechnical) > 0 {
		techPct = float64(len(matchedTechnical)) / float64(len(jobTechnical)) * 100
	}
	softPct := 100.0
	if len(jobSoft) > 0 {
		softPct = float64(len(matchedSoft)) / float64(len(jobSoft)) * 100
	}

	score := techPct*0.70 + softPct*0.30
	return &types.ATSScore{
		Score:             round1(math.Min(score, 100)),
		MatchedKeywords:   matched,
		MissingKeywords:   missing,
		TotalJobKeywords:  totalJobKeywords,
		TechnicalMatchPct: round1(techPct),
		SoftSkillMatchPct: round1(softPct),
	}
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
