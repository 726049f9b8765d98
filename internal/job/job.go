// Package job defines the job posting record shared by the scraper, the
// evaluation engine and the application ledger.
package job

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Record is one job posting as delivered by a job source. PortalJobID is the
// natural key: unique per portal and required before an application may
// reference the job.
type Record struct {
	Title              string   `json:"job_title" mapstructure:"job_title" validate:"required"`
	Company            string   `json:"company" mapstructure:"company"`
	Location           string   `json:"location" mapstructure:"location"`
	Portal             string   `json:"portal" mapstructure:"portal" validate:"required"`
	PortalJobID        string   `json:"portal_job_id" mapstructure:"portal_job_id" validate:"required"`
	Description        string   `json:"description" mapstructure:"description"`
	RequiredSkills     []string `json:"required_skills" mapstructure:"required_skills"`
	ExperienceRequired string   `json:"experience_required" mapstructure:"experience_required"`
	SalaryRange        string   `json:"salary_range" mapstructure:"salary_range"`
	URL                string   `json:"job_url" mapstructure:"job_url"`
}

// Normalize trims surrounding whitespace from every textual field and drops
// empty entries from the explicit skill list. Called once at the source
// boundary so downstream components never see ragged input.
func (r *Record) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.Location = strings.TrimSpace(r.Location)
	r.Portal = strings.TrimSpace(strings.ToLower(r.Portal))
	r.PortalJobID = strings.TrimSpace(r.PortalJobID)
	r.Description = strings.TrimSpace(r.Description)
	r.ExperienceRequired = strings.TrimSpace(r.ExperienceRequired)
	r.SalaryRange = strings.TrimSpace(r.SalaryRange)
	r.URL = strings.TrimSpace(r.URL)

	skills := make([]string, 0, len(r.RequiredSkills))
	for _, s := range r.RequiredSkills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	r.RequiredSkills = skills
}

// Validate reports whether the record carries everything a job source must
// supply. It does not check PortalJobID uniqueness; that is the store's job.
func (r *Record) Validate() error {
	return validate.Struct(r)
}
