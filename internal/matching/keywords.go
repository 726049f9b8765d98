package matching

// DefaultKeywords is the dictionary of terms the matcher looks for inside a
// free-text job description when the posting carries no explicit skill list.
// Matching is word-bounded and case-insensitive.
//
// The list is tuned to the default candidate profile but injectable through
// Config so other profiles can carry their own dictionary.
func DefaultKeywords() []string {
	return []string{
		"python", "django", "fastapi", "flask", "rest api", "restful",
		"postgresql", "postgres", "mysql", "sql",
		"aws", "lambda", "ec2", "s3", "rds", "cloudwatch", "glue", "athena",
		"kinesis", "firehose", "iam", "vpc", "cloudformation", "api gateway",
		"docker", "kubernetes", "jenkins", "github actions", "ci/cd", "terraform",
		"celery", "redis", "pandas", "numpy", "reactjs", "react", "javascript",
		"linux", "git", "microservices", "etl", "etl pipeline",
		"ai", "machine learning", "ml", "deep learning", "nlp",
		"data engineering", "data pipeline", "streaming", "api integration",
		"jwt", "oauth", "oauth2", "authentication", "backend", "api development",
	}
}

// DefaultSynonyms maps a canonical skill to the spellings job postings use
// for it. A requirement token that hits one of the spellings is credited as
// the canonical skill when that skill is in the vocabulary, preventing
// near-misses like "k8s" vs "kubernetes" from scoring as strangers.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"python":           {"python", "py"},
		"django":           {"django"},
		"fastapi":          {"fastapi", "fast-api"},
		"flask":            {"flask"},
		"rest api":         {"rest", "api", "restful"},
		"aws":              {"aws", "amazon"},
		"docker":           {"docker"},
		"kubernetes":       {"kubernetes", "k8s"},
		"jenkins":          {"jenkins"},
		"github actions":   {"github", "actions"},
		"terraform":        {"terraform"},
		"postgres":         {"postgres", "postgresql"},
		"mysql":            {"mysql"},
		"sql":              {"sql"},
		"redis":            {"redis"},
		"celery":           {"celery"},
		"pandas":           {"pandas"},
		"numpy":            {"numpy"},
		"reactjs":          {"react", "reactjs"},
		"javascript":       {"javascript", "js"},
		"linux":            {"linux"},
		"ci/cd":            {"ci", "cd", "pipeline"},
		"microservices":    {"microservices", "microservice"},
		"etl":              {"etl"},
		"ai":               {"ai", "artificial intelligence"},
		"machine learning": {"machine learning", "ml"},
		"ml":               {"ml", "machine learning"},
		"data engineering": {"data engineering", "data engineer"},
	}
}
