package services

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"
)

const (
	TemplateNewSubmission = "new_submission"
	TemplateDailyDigest   = "daily_digest"
)

var builtinTemplates = map[string]struct{ subject, html, text string }{
	TemplateNewSubmission: {
		subject: `{% if instant %}[Instant] {% endif %}New enquiry from {{ submission.name }}`,
		html: `<h2>New project enquiry</h2>
<table>
<tr><td><b>Name</b></td><td>{{ submission.name | escape }}</td></tr>
<tr><td><b>Email</b></td><td>{{ submission.email | escape }}</td></tr>
<tr><td><b>Phone</b></td><td>{{ submission.phone | default: "-" | escape }}</td></tr>
<tr><td><b>Project type</b></td><td>{{ submission.projectType | default: "-" | escape }}</td></tr>
<tr><td><b>Budget</b></td><td>{{ budgetLabel | default: "-" | escape }}</td></tr>
<tr><td><b>Received</b></td><td>{{ submittedAt }}</td></tr>
</table>
{% if summary != "" %}<p><b>In short:</b> {{ summary | escape }}</p>{% endif %}
<p>{{ submission.projectDetails | escape | newline_to_br }}</p>
{% if dashboardUrl != "" %}<p><a href="{{ dashboardUrl }}">Open in dashboard</a></p>{% endif %}`,
		text: `New project enquiry
Name: {{ submission.name }}
Email: {{ submission.email }}
Phone: {{ submission.phone | default: "-" }}
Project type: {{ submission.projectType | default: "-" }}
Budget: {{ budgetLabel | default: "-" }}
Received: {{ submittedAt }}
{% if summary != "" %}In short: {{ summary }}
{% endif %}
{{ submission.projectDetails }}`,
	},
	TemplateDailyDigest: {
		subject: `Daily digest: {{ stats.newInWindow }} new in the last {{ stats.windowDays }} days`,
		html: `<h2>Submissions digest for {{ date }}</h2>
<ul>
<li>Total submissions: {{ stats.total }}</li>
<li>{{ labels.new }}: {{ stats.countsByStatus.new }}</li>
<li>{{ labels.replied }}: {{ stats.countsByStatus.replied }}</li>
<li>{{ labels.archived }}: {{ stats.countsByStatus.archived }}</li>
<li>Response rate: {{ stats.responseRate }}%</li>
{% if stats.topProjectType != "" %}<li>Most requested: {{ stats.topProjectType | escape }}</li>{% endif %}
</ul>
<h3>Last weeks</h3>
<ul>{% for w in stats.weeklySeries %}<li>{{ w.week }}: {{ w.count }}</li>{% endfor %}</ul>`,
		text: `Submissions digest for {{ date }}
Total: {{ stats.total }}
{{ labels.new }}: {{ stats.countsByStatus.new }}
{{ labels.replied }}: {{ stats.countsByStatus.replied }}
{{ labels.archived }}: {{ stats.countsByStatus.archived }}
Response rate: {{ stats.responseRate }}%
{% for w in stats.weeklySeries %}{{ w.week }}: {{ w.count }}
{% endfor %}`,
	},
}

// Rendered is a template expanded into mail parts.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// TemplateService compiles the built-in mail templates once and renders them.
type TemplateService struct {
	engine    *liquid.Engine
	templates map[string]compiledTemplate
}

type compiledTemplate struct {
	subject, html, text *liquid.Template
}

func NewTemplateService() (*TemplateService, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("default", func(value interface{}, fallback string) interface{} {
		if value == nil {
			return fallback
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return fallback
		}
		return value
	})

	ts := &TemplateService{engine: engine, templates: make(map[string]compiledTemplate)}
	for name, src := range builtinTemplates {
		var ct compiledTemplate
		var err error
		if ct.subject, err = engine.ParseString(src.subject); err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", name, err)
		}
		if ct.html, err = engine.ParseString(src.html); err != nil {
			return nil, fmt.Errorf("parse %s html: %w", name, err)
		}
		if ct.text, err = engine.ParseString(src.text); err != nil {
			return nil, fmt.Errorf("parse %s text: %w", name, err)
		}
		ts.templates[name] = ct
	}
	return ts, nil
}

// Render expands the named template with bindings.
func (ts *TemplateService) Render(name string, bindings map[string]interface{}) (Rendered, error) {
	ct, ok := ts.templates[name]
	if !ok {
		return Rendered{}, fmt.Errorf("unknown template %q", name)
	}
	subject, err := ct.subject.RenderString(bindings)
	if err != nil {
		return Rendered{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	html, err := ct.html.RenderString(bindings)
	if err != nil {
		return Rendered{}, fmt.Errorf("render %s html: %w", name, err)
	}
	text, err := ct.text.RenderString(bindings)
	if err != nil {
		return Rendered{}, fmt.Errorf("render %s text: %w", name, err)
	}
	return Rendered{
		Subject: strings.TrimSpace(subject),
		HTML:    html,
		Text:    text,
	}, nil
}
