package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validResponse = `{
	"standardized_title": "AI Engineer",
	"job_level": "Junior",
	"is_internship": false,
	"cities": ["Hanoi"],
	"min_years_experience": 1,
	"min_gpa": null,
	"english_requirement": "TOEIC 600",
	"salary_min": 15,
	"salary_max": 25,
	"currency": "VND",
	"is_salary_negotiable": false,
	"tech_stack": ["Python", "PyTorch"],
	"technical_competencies": ["Model Deployment"],
	"domain_knowledge": ["Computer Vision"]
}`

func TestValidateStandardJobAccepts(t *testing.T) {
	require.NoError(t, ValidateStandardJob([]byte(validResponse)))
}

func TestValidateStandardJobNegotiableSalary(t *testing.T) {
	payload := `{
		"standardized_title": "AI Engineer",
		"is_internship": false,
		"cities": ["Ho Chi Minh"],
		"min_years_experience": 0,
		"salary_min": null,
		"salary_max": null,
		"currency": null,
		"is_salary_negotiable": true,
		"tech_stack": [],
		"technical_competencies": [],
		"domain_knowledge": []
	}`
	require.NoError(t, ValidateStandardJob([]byte(payload)),
		"negotiable postings carry null salary bounds")
}

func TestValidateStandardJobRejects(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"missing title", `{"is_internship":false,"cities":[],"min_years_experience":0,"is_salary_negotiable":false,"tech_stack":[],"technical_competencies":[],"domain_knowledge":[]}`},
		{"empty title", `{"standardized_title":"","is_internship":false,"cities":[],"min_years_experience":0,"is_salary_negotiable":false,"tech_stack":[],"technical_competencies":[],"domain_knowledge":[]}`},
		{"wrong type", `{"standardized_title":"Dev","is_internship":"no","cities":[],"min_years_experience":0,"is_salary_negotiable":false,"tech_stack":[],"technical_competencies":[],"domain_knowledge":[]}`},
		{"negative experience", `{"standardized_title":"Dev","is_internship":false,"cities":[],"min_years_experience":-1,"is_salary_negotiable":false,"tech_stack":[],"technical_competencies":[],"domain_knowledge":[]}`},
		{"not an object", `["Dev"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, ValidateStandardJob([]byte(tc.payload)))
		})
	}
}
