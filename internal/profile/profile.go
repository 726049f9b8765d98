// Package profile holds the candidate profile the matcher scores jobs
// against. The default profile mirrors the candidate's resume; any field can
// be overridden from the configuration file.
package profile

import (
	"sort"
	"strings"
)

// Profile describes the candidate: identity, experience and the skill
// inventory the matching vocabulary is derived from.
type Profile struct {
	Name            string              `mapstructure:"name"`
	Email           string              `mapstructure:"email"`
	ExperienceYears int                 `mapstructure:"experience-years"`
	ResumeVersion   string              `mapstructure:"resume-version"`
	Skills          map[string][]string `mapstructure:"skills"`
	Specializations []string            `mapstructure:"specializations"`
	MLFrameworks    []string            `mapstructure:"ml-frameworks"`

	PreferredRoles     []string `mapstructure:"preferred-roles"`
	PreferredLocations []string `mapstructure:"preferred-locations"`
	Portals            []string `mapstructure:"portals"`
}

// Default returns the built-in candidate profile.
func Default() *Profile {
	return &Profile{
		Name:            "MD Aftab Alam",
		Email:           "aftab.work86@gmail.com",
		ExperienceYears: 4,
		ResumeVersion:   "latest",
		Skills: map[string][]string{
			"programming_languages": {"Python", "JavaScript"},
			"web_frameworks":        {"Django", "FastAPI", "Flask"},
			"databases":             {"PostgreSQL", "MySQL", "SQL"},
			"aws_services": {
				"Lambda", "EC2", "S3", "RDS", "CloudWatch",
				"Glue", "Athena", "Kinesis", "Firehose",
				"IAM", "VPC", "CloudFormation", "API Gateway",
				"CloudFront", "Aurora",
			},
			"devops_tools":   {"Docker", "Kubernetes", "Jenkins", "GitHub Actions", "Terraform"},
			"data_tools":     {"Pandas", "NumPy"},
			"frontend":       {"ReactJS"},
			"apis_protocols": {"REST APIs", "JWT", "OAuth2"},
			"message_queues": {"Celery", "Redis"},
			"other_tools":    {"Linux", "Git", "CI/CD"},
		},
		Specializations: []string{"Data Engineering", "ETL Pipelines", "Microservices", "API Integrations"},
		MLFrameworks:    []string{"Scikit-learn", "TensorFlow basics", "PyTorch basics"},
		PreferredRoles: []string{
			"Python Developer",
			"Python Software Developer",
			"AI Engineer",
			"Machine Learning Engineer",
			"Backend Developer",
		},
		PreferredLocations: []string{"Hyderabad", "Noida", "Delhi NCR", "Gurgaon", "Mumbai", "Kolkata"},
		Portals:            []string{"naukri", "linkedin", "monster", "indeed"},
	}
}

// Vocabulary flattens every skill category, every specialization and every
// named ML framework into one lower-cased, deduplicated list. Deterministic:
// calling it twice yields an identical set.
func (p *Profile) Vocabulary() []string {
	seen := make(map[string]struct{})
	vocab := make([]string, 0, 64)

	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		vocab = append(vocab, s)
	}

	categories := make([]string, 0, len(p.Skills))
	for category := range p.Skills {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		for _, s := range p.Skills[category] {
			add(s)
		}
	}
	for _, s := range p.Specializations {
		add(s)
	}
	for _, s := range p.MLFrameworks {
		add(s)
	}

	return vocab
}
