// Package insights generates patient-facing narrative text for a completed
// risk assessment through a hosted generative-language API. Every call is
// best effort: when no API key is configured, or the remote call fails or
// returns nothing usable, a safe static fallback is returned instead. The
// package never returns an error to its callers.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cardionova/cardionova/internal/platform/explain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Assessment is the context handed to every insight generator.
type Assessment struct {
	Inputs      map[string]interface{}
	RiskScore   float64
	RiskLevel   string
	TopFeatures []explain.Contribution
	Language    string
}

// Client calls the generative-language API's generateContent endpoint.
// A Client with an empty API key is valid and serves fallbacks only.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API host. Used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Explanation returns a short plain-language explanation of the result.
func (c *Client) Explanation(ctx context.Context, a Assessment) string {
	fallback := fmt.Sprintf(
		"Your predicted heart disease risk is %s (score: %.2f). This tool is for educational use only and cannot provide a medical diagnosis. Please discuss any concerns with a qualified healthcare professional.",
		a.RiskLevel, a.RiskScore)

	prompt := fmt.Sprintf(`You are helping to explain the output of a heart-disease risk prediction tool. The tool is not a diagnostic system and must not give medical advice. Explain the result in clear, simple language (about 3-5 sentences). Avoid technical machine-learning terms.

IMPORTANT GUIDELINES:
- Do NOT claim to diagnose or treat any condition.
- Emphasize that the result is only an estimate based on limited inputs.
- Encourage the person to consult a qualified healthcare professional.
- Use neutral, supportive language.

Language: %s

Inputs (key=value): %s
Risk score (0-1): %.3f
Risk level: %s
Top contributing features (name, value): %s`,
		a.language(), formatInputs(a.Inputs), a.RiskScore, a.RiskLevel, formatFeatures(a.TopFeatures))

	text := c.generate(ctx, prompt)
	if text == "" {
		return fallback
	}
	return text
}

// LifestyleSuggestions returns general heart-health tips, one per entry.
func (c *Client) LifestyleSuggestions(ctx context.Context, a Assessment) []string {
	fallback := []string{
		"This tool does not give medical advice. For personalized guidance, please consult a doctor.",
	}
	switch a.RiskLevel {
	case "Low":
		fallback = append(fallback, "Maintain a heart-healthy lifestyle with regular physical activity, balanced diet, and avoiding smoking.")
	case "Moderate":
		fallback = append(fallback, "Consider speaking with a healthcare professional about blood pressure, cholesterol, exercise, and diet goals.")
	default:
		fallback = append(fallback, "It may be important to seek professional medical advice to review your risk factors and next steps.")
	}

	prompt := fmt.Sprintf(`You are assisting with a heart-health education tool. Based on the following estimated risk and risk factors, provide 3-5 short, high-level lifestyle suggestions that a person could discuss with a healthcare professional. These should be generic, non-personalized tips about heart-healthy habits.

STRICT RULES:
- Do NOT give any diagnosis.
- Do NOT mention specific medications or treatment plans.
- Do NOT sound certain about the person's actual health.
- Emphasize that the suggestions are general and should be discussed with a doctor.
- Keep each suggestion to 1-2 sentences.

Language: %s

Inputs (key=value): %s
Risk score (0-1): %.3f
Risk level: %s
Top contributing features (name, value): %s`,
		a.language(), formatInputs(a.Inputs), a.RiskScore, a.RiskLevel, formatFeatures(a.TopFeatures))

	text := c.generate(ctx, prompt)
	if text == "" {
		return fallback
	}
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(ln), "-* "))
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return fallback
	}
	return lines
}

// FollowupPlan returns a short non-prescriptive plan to discuss with a
// clinician: questions to ask, topics to review, possible next steps.
func (c *Client) FollowupPlan(ctx context.Context, a Assessment) string {
	fallback := "Consider scheduling an appointment with a qualified healthcare professional to review your blood pressure, cholesterol, lifestyle, and any symptoms. Bring this assessment result and ask what additional tests or monitoring they recommend."

	prompt := fmt.Sprintf(`You are assisting with a heart-health education tool. Based on the estimated risk and contributing factors, write a brief follow-up plan that a person could discuss with a qualified healthcare professional.

The plan should:
- Be written in %s.
- NOT be a medical prescription or treatment plan.
- Suggest questions to ask a doctor, topics to review, or possible next steps (e.g., ask about further tests, monitoring, or lifestyle changes).
- Clearly encourage the reader to consult a doctor for any decisions.
- Be 4-7 short bullet points.

STRICT RULES:
- Do NOT name specific drugs or dosages.
- Do NOT claim to diagnose or cure any disease.
- Do NOT instruct the user to start or stop medications.

Inputs (key=value): %s
Risk score (0-1): %.3f
Risk level: %s
Top contributing features (name, value): %s`,
		a.language(), formatInputs(a.Inputs), a.RiskScore, a.RiskLevel, formatFeatures(a.TopFeatures))

	text := c.generate(ctx, prompt)
	if text == "" {
		return fallback
	}
	return text
}

// PrescriptionSummary returns a structured discussion outline for a doctor.
// It never contains medication names, drug classes, or dosages.
func (c *Client) PrescriptionSummary(ctx context.Context, a Assessment) string {
	fallback := "This summary is intended to help structure a discussion with a qualified healthcare professional. It does not recommend specific medications or doses. Please consult your doctor for any treatment decisions."

	prompt := fmt.Sprintf(`You are helping with a heart-health education tool. Based on the following patient data and estimated risk, write a brief, structured summary that a DOCTOR could use as a starting point for their own prescription and management plan.

SAFETY RULES (MUST FOLLOW):
- Do NOT name any medications or drug classes.
- Do NOT suggest any dosages, frequencies, or treatment durations.
- Do NOT instruct the patient to start, stop, or change medication.
- Do NOT claim to diagnose, cure, or prevent disease.
- Keep all content as general topics or areas for the doctor to consider and discuss.

Patient inputs (key=value): %s
Estimated heart disease risk (0-1): %.3f
Risk level: %s
Top contributing model features: %s

Write the summary in %s with the following sections:

1) Clinical focus areas for the doctor
2) Lifestyle focus areas
3) Possible follow-up evaluations
4) Safety reminder for the patient`,
		formatInputs(a.Inputs), a.RiskScore, a.RiskLevel, formatFeatures(a.TopFeatures), a.language())

	text := c.generate(ctx, prompt)
	if text == "" {
		return fallback
	}
	return text
}

func (a Assessment) language() string {
	if a.Language == "" {
		return "en"
	}
	return a.Language
}

// generate posts the prompt to the generateContent endpoint and returns the
// concatenated candidate text, or "" when the call cannot be made or fails.
func (c *Client) generate(ctx context.Context, prompt string) string {
	if c.apiKey == "" {
		return ""
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return ""
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("insight generation request failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("insight generation returned non-200")
		return ""
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Warn().Err(err).Msg("insight generation response decode failed")
		return ""
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func formatInputs(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(pairs, ", ")
}

func formatFeatures(fs []explain.Contribution) string {
	pairs := make([]string, 0, len(fs))
	for _, f := range fs {
		pairs = append(pairs, fmt.Sprintf("(%s, %.4f)", f.Feature, f.Value))
	}
	return strings.Join(pairs, ", ")
}
