package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/zafaraftab1/careercopilot/internal/job"
	"github.com/zafaraftab1/careercopilot/internal/profile"
	"github.com/zafaraftab1/careercopilot/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	GenerateContentWithCache(ctx context.Context, prompt, cacheName string) (string, error)
	EnsureProfileCache(ctx context.Context, candidateID, displayName, payload string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Composer produces a short application note for one job from the candidate
// profile. The profile payload is marshaled once and stored in a Gemini
// cached content resource on first use, so per-job prompts carry only the
// posting. Implements ai.Composer.
type Composer struct {
	generator contentGenerator
	candidate *profile.Profile
	logger    *zap.Logger
	maxLogLen int

	prepare       sync.Once
	candidateJSON string
	prepareErr    error

	cacheMu    sync.Mutex
	cacheName  string
	cacheTried bool
}

// NewComposer creates a Composer around a content generator.
func NewComposer(generator contentGenerator, candidate *profile.Profile, maxLogLength int, logger *zap.Logger) *Composer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Composer{
		generator: generator,
		candidate: candidate,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Compose builds the prompt and returns the generated note as plain text.
func (c *Composer) Compose(ctx context.Context, j job.Record) (string, error) {
	if c.candidate == nil {
		return "", fmt.Errorf("candidate profile is required")
	}

	c.prepare.Do(func() {
		payload := map[string]any{
			"name":             c.candidate.Name,
			"experience_years": c.candidate.ExperienceYears,
			"skills":           c.candidate.Skills,
			"specializations":  c.candidate.Specializations,
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			c.prepareErr = fmt.Errorf("marshal candidate payload: %w", err)
			return
		}
		c.candidateJSON = string(data)
	})
	if c.prepareErr != nil {
		return "", c.prepareErr
	}

	jobJSON, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	cacheName := c.ensureCache(ctx)

	var prompt string
	if cacheName != "" {
		prompt = buildPrompt("(provided as cached content)", string(jobJSON))
	} else {
		prompt = buildPrompt(c.candidateJSON, string(jobJSON))
	}

	c.logger.Debug("gemini compose request",
		zap.String("portal_job_id", j.PortalJobID),
		zap.String("profile_cache", cacheName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLen)),
	)

	var raw string
	if cacheName != "" {
		raw, err = c.generator.GenerateContentWithCache(ctx, prompt, cacheName)
	} else {
		raw, err = c.generator.GenerateContent(ctx, prompt)
	}
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini compose response",
		zap.String("portal_job_id", j.PortalJobID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
	)

	return cleanMessage(raw), nil
}

// ensureCache creates the profile cache on first use and reuses its name
// afterwards. A failed create is attempted once; composing then proceeds
// with the profile inlined in every prompt.
func (c *Composer) ensureCache(ctx context.Context) string {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if c.cacheName != "" || c.cacheTried {
		return c.cacheName
	}
	c.cacheTried = true

	name, err := c.generator.EnsureProfileCache(ctx, c.candidate.Email, c.candidate.Name, c.candidateJSON)
	if err != nil {
		c.logger.Warn("creating profile cache failed, inlining profile",
			zap.String("candidate", c.candidate.Email),
			zap.Error(err),
		)
		return ""
	}

	c.cacheName = name
	return name
}

func buildPrompt(candidateJSON, jobJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Candidate:\n{{CANDIDATE_JSON}}\n\nJob posting:\n{{JOB_JSON}}\n\nApplication note:"
	}
	prompt := strings.ReplaceAll(template, "{{CANDIDATE_JSON}}", candidateJSON)
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", jobJSON)
	return prompt
}

// cleanMessage strips the code fences and quoting models occasionally wrap
// plain-text answers in.
func cleanMessage(raw string) string {
	msg := strings.TrimSpace(raw)
	if strings.HasPrefix(msg, "```") {
		msg = strings.TrimPrefix(msg, "```text")
		msg = strings.TrimPrefix(msg, "```")
		if idx := strings.LastIndex(msg, "```"); idx != -1 {
			msg = msg[:idx]
		}
	}
	msg = strings.Trim(msg, "`")
	msg = strings.Trim(msg, `"`)
	return strings.TrimSpace(msg)
}
