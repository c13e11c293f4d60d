package llm

import (
	"fmt"
	"strings"
)

// PromptInput carries the raw posting fields interpolated into the
// extraction prompt. Description and Requirement come pre-split from
// the info block so the model sees structure instead of one mashed
// paragraph.
type PromptInput struct {
	Title       string
	Company     string
	Location    string
	Salary      string
	Experience  string
	Description string
	Requirement string
}

// BuildExtractionPrompt renders the job-parsing prompt. The usdRate is
// the Million-VND value of one thousand USD, used to standardize
// salaries quoted in dollars.
func BuildExtractionPrompt(in PromptInput, usdRate float64) string {
	var sb strings.Builder

	sb.WriteString("You are an expert AI Recruitment Data Parser. Your job is to extract structured data from raw job descriptions.\n\n")
	sb.WriteString("### EXTRACTION RULES:\n\n")
	sb.WriteString("1. **Locations (Cities):**\n")
	sb.WriteString("   - Normalize Vietnamese cities to standard English formats: \"Hanoi\", \"Ho Chi Minh\", \"Da Nang\".\n")
	sb.WriteString("   - If \"Remote\" is mentioned, include \"Remote\" in the list.\n\n")
	sb.WriteString("2. **Salary Parsing:**\n")
	sb.WriteString("   - If the salary is \"Thỏa thuận\", \"Negotiable\", or \"Deal\": set `is_salary_negotiable` = true, `salary_min` = null, `salary_max` = null.\n")
	sb.WriteString("   - If a range is given (e.g., \"10 - 15 triệu\"): set `salary_min` = 10, `salary_max` = 15, `currency` = \"VND\".\n")
	fmt.Fprintf(&sb, "   - Standardize to Million VND: convert 1000 USD to %.0f Million VND (e.g., \"Up to 1000 USD\" -> `salary_max` = %.0f).\n", usdRate, usdRate)
	sb.WriteString("   - Set `currency` to \"VND\" after conversion, or null when no salary is given.\n\n")
	sb.WriteString("3. **Experience:**\n")
	sb.WriteString("   - Extract strictly numeric years for `min_years_experience` (e.g., \"1+ year\" -> 1.0).\n")
	sb.WriteString("   - If \"Intern\" or \"Fresher\", set `min_years_experience` = 0.0.\n\n")
	sb.WriteString("4. **Skills vs. Domain:**\n")
	sb.WriteString("   - `tech_stack`: specific tools/languages (Python, AWS, React, Docker, SQL).\n")
	sb.WriteString("   - `technical_competencies`: broader technical abilities (System Design, Model Deployment, Data Pipelines).\n")
	sb.WriteString("   - `domain_knowledge`: concepts/industries (Banking, Computer Vision, NLP, E-commerce, Agile).\n\n")
	sb.WriteString("5. **English Requirements:**\n")
	sb.WriteString("   - Extract specific certificates if mentioned (\"TOEIC 600\", \"IELTS 6.5\").\n")
	sb.WriteString("   - If generic (\"Good English\"), return \"Fluent\" or \"Intermediate\".\n\n")
	sb.WriteString("### OUTPUT FORMAT:\n")
	sb.WriteString("Return strictly valid JSON matching the provided schema. Handle nulls gracefully.\n\n")
	sb.WriteString("Here is the raw job text. Analyze it:\n\n")
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "**TITLE:** %s\n", in.Title)
	fmt.Fprintf(&sb, "**COMPANY:** %s\n", in.Company)
	fmt.Fprintf(&sb, "**LOCATION (Raw):** %s\n", in.Location)
	fmt.Fprintf(&sb, "**SALARY:** %s\n", in.Salary)
	fmt.Fprintf(&sb, "**EXPERIENCE:** %s\n", in.Experience)
	fmt.Fprintf(&sb, "**DESCRIPTION:** %s\n", in.Description)
	fmt.Fprintf(&sb, "**REQUIREMENT:** %s\n", in.Requirement)
	sb.WriteString("---\n")

	return sb.String()
}
