package render

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/resumetools/resume-optimizer/internal/resume"

	"go.uber.org/zap"
)

//go:embed assets/template.tex
var defaultTemplate string

//go:embed assets/resume.cls
var classFile string

// ClassFile returns the resume.cls companion the generated .tex compiles
// against. Callers write it next to the output when absent.
func ClassFile() []byte {
	return []byte(classFile)
}

// LaTeXRenderer fills the rSection template with record content. Sections
// present in the template are replaced in place, commented sections with
// matching content are uncommented, and remaining populated sections are
// appended before \end{document}.
type LaTeXRenderer struct {
	template   string
	skillOrder []string
	logger     *zap.Logger
}

func NewLaTeXRenderer(cfg *Config, logger *zap.Logger) (*LaTeXRenderer, error) {
	template := defaultTemplate
	if cfg.TemplateFile != "" {
		content, err := os.ReadFile(cfg.TemplateFile)
		if err != nil {
			logger.Warn("latex template not readable, using embedded skeleton",
				zap.String("path", cfg.TemplateFile),
				zap.Error(err),
			)
		} else {
			template = string(content)
		}
	}
	return &LaTeXRenderer{template: template, skillOrder: cfg.SkillOrder, logger: logger}, nil
}

func (r *LaTeXRenderer) Render(record *resume.Record) ([]byte, error) {
	if !record.Renderable() {
		return nil, fmt.Errorf("record is missing contact info or body sections")
	}

	tpl := r.template
	tpl = fillName(tpl, record.ContactInfo)
	tpl = fillAddresses(tpl, record.ContactInfo)

	for _, s := range r.sections(record) {
		tpl = placeSection(tpl, s)
	}

	return []byte(tpl), nil
}

// latexSection is one rSection worth of content, with the alternate heading
// names templates use for it.
type latexSection struct {
	name    string
	aliases []string
	content string
}

func (r *LaTeXRenderer) sections(record *resume.Record) []latexSection {
	var sections []latexSection

	if record.Summary != "" {
		sections = append(sections, latexSection{
			name:    "OBJECTIVE",
			aliases: []string{"SUMMARY"},
			content: fmt.Sprintf("\n{%s}\n", EscapeLaTeX(record.Summary)),
		})
	}

	if len(record.Education) > 0 {
		var b strings.Builder
		b.WriteString("\n")
		for _, edu := range record.Education {
			fmt.Fprintf(&b, "{\\bf %s}, %s \\hfill {%s}\\\\\n",
				EscapeLaTeX(edu.Degree), EscapeLaTeX(edu.Institution), EscapeLaTeX(edu.Dates))
			if edu.Details != "" {
				fmt.Fprintf(&b, "Relevant Coursework: %s\n", EscapeLaTeX(edu.Details))
			}
			b.WriteString("\n")
		}
		sections = append(sections, latexSection{name: "Education", content: b.String()})
	}

	if !record.Skills.IsEmpty() {
		sections = append(sections, latexSection{name: "SKILLS", content: r.skillsTabular(record.Skills)})
	}

	if len(record.Experience) > 0 {
		var b strings.Builder
		b.WriteString("\n")
		for _, job := range record.Experience {
			fmt.Fprintf(&b, "\\textbf{%s} \\hfill %s\\\\\n", EscapeLaTeX(job.Title), EscapeLaTeX(job.Dates))
			fmt.Fprintf(&b, "%s \\hfill \\textit{%s}\n", EscapeLaTeX(job.Company), EscapeLaTeX(job.Location))
			b.WriteString("\\begin{itemize}\n    \\itemsep -3pt {}\n")
			for _, bullet := range job.Description {
				fmt.Fprintf(&b, "     \\item %s\n", EscapeLaTeX(bullet))
			}
			b.WriteString("\\end{itemize}\n\n")
		}
		sections = append(sections, latexSection{
			name:    "EXPERIENCE",
			aliases: []string{"WORK EXPERIENCE"},
			content: b.String(),
		})
	}

	if len(record.Projects) > 0 {
		var b strings.Builder
		b.WriteString("\\begin{itemize}\n    \\itemsep -3pt {}\n")
		for _, project := range record.Projects {
			title := fmt.Sprintf("\\textbf{%s}", EscapeLaTeX(project.Title))
			if project.URL != "" {
				title += fmt.Sprintf(" \\href{%s}{(Link)}", project.URL)
			}
			if project.Technologies != "" {
				title += " - " + EscapeLaTeX(project.Technologies)
			}
			fmt.Fprintf(&b, "\\item %s\n", title)
			for _, line := range project.Description {
				fmt.Fprintf(&b, "    %s\n", EscapeLaTeX(line))
			}
		}
		b.WriteString("\\end{itemize}\n")
		sections = append(sections, latexSection{name: "PROJECTS", content: b.String()})
	}

	if len(record.Certifications) > 0 {
		var b strings.Builder
		b.WriteString("\\begin{itemize}\n    \\itemsep -3pt {}\n")
		for _, cert := range record.Certifications {
			fmt.Fprintf(&b, "    \\item \\textbf{%s} - %s \\hfill %s\n",
				EscapeLaTeX(cert.Name), EscapeLaTeX(cert.Issuer), EscapeLaTeX(cert.Date))
		}
		b.WriteString("\\end{itemize}\n")
		sections = append(sections, latexSection{name: "CERTIFICATIONS", content: b.String()})
	}

	if len(record.Activities) > 0 {
		sections = append(sections, latexSection{
			name:    "Extra-Curricular Activities",
			content: itemizeList(record.Activities),
		})
	}

	if len(record.Leadership) > 0 {
		sections = append(sections, latexSection{name: "Leadership", content: itemizeList(record.Leadership)})
	}

	return sections
}

func (r *LaTeXRenderer) skillsTabular(skills *resume.Skills) string {
	var b strings.Builder
	b.WriteString("\n\\begin{tabular}{ @{} >{\\bfseries}l @{\\hspace{4ex}} p{13cm} }\n")

	if skills.Flat != nil {
		fmt.Fprintf(&b, "Skills & %s \\\\\n", joinEscaped(skills.Flat))
	} else {
		for _, category := range orderedCategories(skills.Categories, r.skillOrder) {
			list := skills.Categories[category]
			if len(list) == 0 {
				continue
			}
			fmt.Fprintf(&b, "%s & %s \\\\\n", categoryHeading(category), joinEscaped(list))
		}
	}

	b.WriteString("\\end{tabular}\\\\\n")
	return b.String()
}

func itemizeList(items []string) string {
	var b strings.Builder
	b.WriteString("\\begin{itemize}\n")
	for _, item := range items {
		fmt.Fprintf(&b, "    \\item %s\n", EscapeLaTeX(item))
	}
	b.WriteString("\\end{itemize}\n")
	return b.String()
}

func joinEscaped(items []string) string {
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = EscapeLaTeX(item)
	}
	return strings.Join(escaped, ", ")
}

// orderedCategories returns category names in the configured order followed
// by the remaining names sorted, reusing the flattening convention.
func orderedCategories(categories map[string][]string, order []string) []string {
	helper := &resume.Skills{Categories: map[string][]string{}}
	for name := range categories {
		helper.Categories[name] = []string{name}
	}
	return helper.Flatten(order)
}

// categoryHeading turns "technical_skills" into "Technical Skills".
func categoryHeading(category string) string {
	words := strings.Split(strings.ReplaceAll(category, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return EscapeLaTeX(strings.Join(words, " "))
}

var (
	namePattern      = regexp.MustCompile(`\\name\{[^}]*\}`)
	addressPattern   = regexp.MustCompile(`\\address\{[^}]*\}`)
	sectionHeading   = regexp.MustCompile(`\\begin\{rSection\}\{([^}]*)\}`)
	commentedHeading = regexp.MustCompile(`%\s*\\begin\{rSection\}\{([^}]*)\}`)
)

func fillName(tpl string, contact *resume.ContactInfo) string {
	loc := namePattern.FindStringIndex(tpl)
	if loc == nil {
		return tpl
	}
	return tpl[:loc[0]] + fmt.Sprintf("\\name{%s}", EscapeLaTeX(contact.Name)) + tpl[loc[1]:]
}

// fillAddresses rewrites the template's two address blocks: phone and
// location first, hyperlinked email/profiles second. A template with a single
// block gets both in its place.
func fillAddresses(tpl string, contact *resume.ContactInfo) string {
	first := fmt.Sprintf("\\address{%s \\\\ %s}", EscapeLaTeX(contact.Phone), EscapeLaTeX(contact.Location))
	second := fmt.Sprintf("\\address{%s}", strings.Join(contactLinks(contact), " \\\\ "))

	locs := addressPattern.FindAllStringIndex(tpl, 2)
	switch len(locs) {
	case 0:
		return tpl
	case 1:
		return tpl[:locs[0][0]] + first + second + tpl[locs[0][1]:]
	default:
		// Replace back to front so the first offsets stay valid.
		tpl = tpl[:locs[1][0]] + second + tpl[locs[1][1]:]
		return tpl[:locs[0][0]] + first + tpl[locs[0][1]:]
	}
}

// contactLinks renders the link-bearing contact fields, shortening the
// display text of recognizable profile URLs.
func contactLinks(contact *resume.ContactInfo) []string {
	var parts []string

	if contact.Email != "" {
		email := EscapeLaTeX(contact.Email)
		parts = append(parts, fmt.Sprintf("\\href{mailto:%s}{%s}", email, email))
	}
	if contact.LinkedIn != "" {
		if strings.Contains(contact.LinkedIn, "linkedin.com") {
			parts = append(parts, fmt.Sprintf("\\href{%s}{LinkedIn}", contact.LinkedIn))
		} else {
			parts = append(parts, EscapeLaTeX(contact.LinkedIn))
		}
	}
	if contact.GitHub != "" {
		if strings.Contains(contact.GitHub, "github.com") {
			parts = append(parts, fmt.Sprintf("\\href{%s}{GitHub}", contact.GitHub))
		} else {
			parts = append(parts, EscapeLaTeX(contact.GitHub))
		}
	}
	if contact.Website != "" {
		display := contact.Website
		if len(display) > 30 {
			display = strings.TrimPrefix(display, "https://")
			display = strings.TrimPrefix(display, "http://")
			display, _, _ = strings.Cut(display, "/")
		}
		parts = append(parts, fmt.Sprintf("\\href{%s}{%s}", contact.Website, EscapeLaTeX(display)))
	}

	return parts
}

// placeSection puts the section content into the template: uncomment a
// commented heading first if one matches, replace the live block in place,
// or append a new block before \end{document}.
func placeSection(tpl string, s latexSection) string {
	names := append([]string{s.name}, s.aliases...)

	for _, name := range names {
		if actual, ok := matchHeading(commentedHeading, tpl, name); ok {
			tpl = uncommentSection(tpl, actual)
			break
		}
	}

	for _, name := range names {
		if actual, ok := matchHeading(sectionHeading, tpl, name); ok {
			return replaceSection(tpl, actual, s.content)
		}
	}

	return appendSection(tpl, s.name, s.content)
}

// matchHeading finds the template's spelling of a section name, compared
// case-insensitively.
func matchHeading(pattern *regexp.Regexp, tpl, name string) (string, bool) {
	for _, match := range pattern.FindAllStringSubmatch(tpl, -1) {
		if strings.EqualFold(match[1], name) {
			return match[1], true
		}
	}
	return "", false
}

func uncommentSection(tpl, actualName string) string {
	pattern := regexp.MustCompile(
		`(?s)%\s*\\begin\{rSection\}\{` + regexp.QuoteMeta(actualName) + `\}.*?%\s*\\end\{rSection\}`)
	loc := pattern.FindStringIndex(tpl)
	if loc == nil {
		return tpl
	}

	lines := strings.Split(tpl[loc[0]:loc[1]], "\n")
	for i, line := range lines {
		trimmed := strings.TrimPrefix(line, "% ")
		lines[i] = strings.TrimPrefix(trimmed, "%")
	}

	return tpl[:loc[0]] + strings.Join(lines, "\n") + tpl[loc[1]:]
}

func replaceSection(tpl, actualName, content string) string {
	pattern := regexp.MustCompile(
		`(?s)\\begin\{rSection\}\{` + regexp.QuoteMeta(actualName) + `\}.*?\\end\{rSection\}`)
	loc := pattern.FindStringIndex(tpl)
	if loc == nil {
		return tpl
	}

	block := fmt.Sprintf("\\begin{rSection}{%s}\n%s\n\\end{rSection}", actualName, content)
	return tpl[:loc[0]] + block + tpl[loc[1]:]
}

func appendSection(tpl, name, content string) string {
	end := strings.Index(tpl, "\\end{document}")
	if end < 0 || strings.TrimSpace(content) == "" {
		return tpl
	}

	block := fmt.Sprintf("\\begin{rSection}{%s}\n%s\n\\end{rSection}\n\n", name, content)
	return tpl[:end] + block + tpl[end:]
}
