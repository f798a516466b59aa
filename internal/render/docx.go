package render

import (
	"bytes"
	"fmt"
	"strings"

	"baliance.com/gooxml/document"
	"baliance.com/gooxml/measurement"
	"baliance.com/gooxml/schema/soo/wml"

	"github.com/resumetools/resume-optimizer/internal/resume"
)

const nameFontSize = 16 * measurement.Point

// DocxRenderer writes the record as a Word document: centered header,
// uppercase section headings, bulleted experience entries.
type DocxRenderer struct {
	skillOrder []string
}

func (r *DocxRenderer) Render(record *resume.Record) ([]byte, error) {
	if !record.Renderable() {
		return nil, fmt.Errorf("record is missing contact info or body sections")
	}

	doc := document.New()

	name := doc.AddParagraph()
	name.Properties().SetAlignment(wml.ST_JcCenter)
	nameRun := name.AddRun()
	nameRun.Properties().SetBold(true)
	nameRun.Properties().SetSize(nameFontSize)
	nameRun.AddText(record.ContactInfo.Name)

	contact := doc.AddParagraph()
	contact.Properties().SetAlignment(wml.ST_JcCenter)
	contact.AddRun().AddText(contactLine(record.ContactInfo))

	if record.Summary != "" {
		addHeading(doc, "SUMMARY")
		doc.AddParagraph().AddRun().AddText(record.Summary)
	}

	if !record.Skills.IsEmpty() {
		addHeading(doc, "SKILLS")
		doc.AddParagraph().AddRun().AddText(strings.Join(record.Skills.Flatten(r.skillOrder), ", "))
	}

	if len(record.Experience) > 0 {
		addHeading(doc, "EXPERIENCE")
		for _, job := range record.Experience {
			title := doc.AddParagraph()
			titleRun := title.AddRun()
			titleRun.Properties().SetBold(true)
			titleRun.AddText(fmt.Sprintf("%s - %s", job.Title, job.Company))

			dates := doc.AddParagraph()
			datesRun := dates.AddRun()
			datesRun.Properties().SetItalic(true)
			datesRun.AddText(job.Dates)

			for _, bullet := range job.Description {
				addBullet(doc, bullet)
			}
		}
	}

	if len(record.Education) > 0 {
		addHeading(doc, "EDUCATION")
		for _, edu := range record.Education {
			degree := doc.AddParagraph()
			degreeRun := degree.AddRun()
			degreeRun.Properties().SetBold(true)
			degreeRun.AddText(fmt.Sprintf("%s - %s", edu.Degree, edu.Institution))

			dates := doc.AddParagraph()
			datesRun := dates.AddRun()
			datesRun.Properties().SetItalic(true)
			datesRun.AddText(edu.Dates)

			if edu.Details != "" {
				doc.AddParagraph().AddRun().AddText(edu.Details)
			}
		}
	}

	if len(record.Projects) > 0 {
		addHeading(doc, "PROJECTS")
		for _, project := range record.Projects {
			title := doc.AddParagraph()
			titleRun := title.AddRun()
			titleRun.Properties().SetBold(true)
			titleRun.AddText(project.Title)

			for _, line := range project.Description {
				doc.AddParagraph().AddRun().AddText(line)
			}
		}
	}

	if len(record.Certifications) > 0 {
		addHeading(doc, "CERTIFICATIONS")
		for _, cert := range record.Certifications {
			title := doc.AddParagraph()
			titleRun := title.AddRun()
			titleRun.Properties().SetBold(true)
			titleRun.AddText(fmt.Sprintf("%s - %s", cert.Name, cert.Issuer))

			date := doc.AddParagraph()
			dateRun := date.AddRun()
			dateRun.Properties().SetItalic(true)
			dateRun.AddText(cert.Date)
		}
	}

	if len(record.Activities) > 0 {
		addHeading(doc, "EXTRA-CURRICULAR ACTIVITIES")
		for _, activity := range record.Activities {
			addBullet(doc, activity)
		}
	}

	if len(record.Leadership) > 0 {
		addHeading(doc, "LEADERSHIP")
		for _, item := range record.Leadership {
			addBullet(doc, item)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("save docx: %w", err)
	}
	return buf.Bytes(), nil
}

func addHeading(doc *document.Document, title string) {
	doc.AddParagraph()
	heading := doc.AddParagraph()
	run := heading.AddRun()
	run.Properties().SetBold(true)
	run.AddText(title)
}

// addBullet uses a literal bullet glyph rather than a numbering style, so the
// document renders identically in viewers without the default style set.
func addBullet(doc *document.Document, text string) {
	doc.AddParagraph().AddRun().AddText("• " + text)
}

// contactLine joins the populated contact fields with pipe separators.
func contactLine(contact *resume.ContactInfo) string {
	parts := []string{contact.Email, contact.Phone, contact.Location, contact.LinkedIn}
	var populated []string
	for _, part := range parts {
		if part != "" {
			populated = append(populated, part)
		}
	}
	return strings.Join(populated, " | ")
}
