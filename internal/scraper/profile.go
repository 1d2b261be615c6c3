package scraper

import (
	"fmt"
	"strings"

	"tailorbase/internal/types"
)

// ProfileItem is one scraped profile from the actor dataset
type ProfileItem struct {
	FullName  string      `json:"fullName"`
	Headline  string      `json:"headline"`
	Location  string      `json:"location"`
	Summary   string      `json:"summary"`
	Email     string      `json:"email"`
	Skills    []string    `json:"skills"`
	Positions []Position  `json:"positions"`
	Education []Education `json:"education"`
}

// Position is one job entry on a scraped profile
type Position struct {
	Title       string `json:"title"`
	CompanyName string `json:"companyName"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// Education is one school entry on a scraped profile
type Education struct {
	SchoolName   string `json:"schoolName"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
}

// ToResumeContent maps a scraped profile into the structured resume form the
// rest of the system works with.
func (p ProfileItem) ToResumeContent() types.ResumeContent {
	content := types.ResumeContent{
		FullName: p.FullName,
		Headline: p.Headline,
		Email:    p.Email,
		Location: p.Location,
		Summary:  p.Summary,
		Skills:   p.Skills,
	}

	if len(p.Positions) > 0 {
		section := types.ResumeSection{Title: "Experience"}
		for _, pos := range p.Positions {
			section.Items = append(section.Items, formatPosition(pos))
		}
		content.Sections = append(content.Sections, section)
	}

	if len(p.Education) > 0 {
		section := types.ResumeSection{Title: "Education"}
		for _, edu := range p.Education {
			section.Items = append(section.Items, formatEducation(edu))
		}
		content.Sections = append(content.Sections, section)
	}

	return content
}

// ToRawText renders the profile as plain text for the analysis modules
func (p ProfileItem) ToRawText() string {
	var b strings.Builder

	writeLine := func(s string) {
		if s != "" {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	writeLine(p.FullName)
	writeLine(p.Headline)
	writeLine(p.Location)
	writeLine("")
	writeLine(p.Summary)

	if len(p.Positions) > 0 {
		b.WriteString("\nExperience\n")
		for _, pos := range p.Positions {
			writeLine(formatPosition(pos))
		}
	}
	if len(p.Education) > 0 {
		b.WriteString("\nEducation\n")
		for _, edu := range p.Education {
			writeLine(formatEducation(edu))
		}
	}
	if len(p.Skills) > 0 {
		b.WriteString("\nSkills: ")
		b.WriteString(strings.Join(p.Skills, ", "))
		b.WriteString("\n")
	}

	return b.String()
}

func formatPosition(pos Position) string {
	dates := pos.StartDate
	if pos.EndDate != "" {
		dates += " - " + pos.EndDate
	} else if dates != "" {
		dates += " - present"
	}

	parts := []string{}
	if pos.Title != "" {
		parts = append(parts, pos.Title)
	}
	if pos.CompanyName != "" {
		parts = append(parts, pos.CompanyName)
	}
	head := strings.Join(parts, ", ")
	if dates != "" {
		head = fmt.Sprintf("%s (%s)", head, dates)
	}
	if pos.Description != "" {
		head += ": " + pos.Description
	}
	return head
}

func formatEducation(edu Education) string {
	parts := []string{}
	if edu.Degree != "" {
		parts = append(parts, edu.Degree)
	}
	if edu.FieldOfStudy != "" {
		parts = append(parts, edu.FieldOfStudy)
	}
	if edu.SchoolName != "" {
		parts = append(parts, edu.SchoolName)
	}
	return strings.Join(parts, ", ")
}
