package llm

import (
	"fmt"
	"strings"

	"github.com/hyperjump/shortlist/internal/models"
)

const systemPrompt = "You are an expert recruiter. Analyze resumes objectively and return valid JSON responses only."

const responseSchema = `{
    "overall_score": <float 0-100>,
    "skills_match_score": <float 0-100>,
    "experience_score": <float 0-100>,
    "education_score": <float 0-100>,
    "reasoning": "<detailed explanation of the scores>",
    "strengths": ["<strength 1>", "<strength 2>", ...],
    "weaknesses": ["<weakness 1>", "<weakness 2>", ...],
    "recommendation": "<HIGHLY_RECOMMENDED|RECOMMENDED|MAYBE|NOT_RECOMMENDED>"
}`

const criteria = `Evaluation Criteria:
1. Skills Match (0-100): How well do the candidate's skills align with required and preferred skills?
2. Experience Score (0-100): Does the candidate have relevant experience and meet the years requirement?
3. Education Score (0-100): Does the education background fit the role requirements?
4. Overall Score (0-100): Weighted average considering all factors
5. Provide specific strengths and weaknesses
6. Give a clear hiring recommendation

Be thorough, fair, and objective in your analysis. Return ONLY valid JSON.`

// BuildPrompt renders the user message for one resume/job pair.
func BuildPrompt(r models.ResumeRecord, j models.JobDescriptionRecord) string {
	var b strings.Builder
	b.WriteString("You are an expert recruiter and resume screening specialist. ")
	b.WriteString("Analyze the following resume against the job description and provide a detailed evaluation.\n\n")
	writeJob(&b, j)
	b.WriteString("\n---\n\n")
	writeResume(&b, r)
	b.WriteString("\n---\n\n")
	b.WriteString("Please analyze this candidate and provide a JSON response with the following structure:\n")
	b.WriteString(responseSchema)
	b.WriteString("\n\n")
	b.WriteString(criteria)
	return b.String()
}

func writeJob(b *strings.Builder, j models.JobDescriptionRecord) {
	fmt.Fprintf(b, "JOB TITLE: %s\nCOMPANY: %s\n\n", j.Title, j.Company)
	fmt.Fprintf(b, "DESCRIPTION:\n%s\n\n", j.Description)
	fmt.Fprintf(b, "REQUIRED SKILLS:\n%s\n\n", strings.Join(j.RequiredSkills, ", "))
	fmt.Fprintf(b, "PREFERRED SKILLS:\n%s\n\n", strings.Join(j.PreferredSkills, ", "))
	fmt.Fprintf(b, "MINIMUM EXPERIENCE: %d years\n\n", j.ExperienceYears)
	fmt.Fprintf(b, "RESPONSIBILITIES:\n%s\n\n", bullets(j.Responsibilities))
	fmt.Fprintf(b, "QUALIFICATIONS:\n%s\n", bullets(j.Qualifications))
}

func writeResume(b *strings.Builder, r models.ResumeRecord) {
	fmt.Fprintf(b, "CANDIDATE INFORMATION:\nName: %s\nEmail: %s\nPhone: %s\n\n", r.Name, r.Email, r.Phone)
	fmt.Fprintf(b, "SUMMARY:\n%s\n\n", r.Summary)
	fmt.Fprintf(b, "SKILLS:\n%s\n\n", strings.Join(r.Skills, ", "))

	b.WriteString("EXPERIENCE:\n")
	for _, e := range r.Experience {
		fmt.Fprintf(b, "• %s at %s (%s)\n  %s\n", orNA(e.Title), orNA(e.Company), orNA(e.Duration), e.Description)
	}
	b.WriteString("\nEDUCATION:\n")
	for _, e := range r.Education {
		fmt.Fprintf(b, "• %s in %s from %s (%s)\n", orNA(e.Degree), orNA(e.Field), orNA(e.Institution), orNA(e.Year))
	}
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + it
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
