// Package mailer renders regulation update emails and hands them to a
// delivery backend.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/enrich"
)

// Errors returned while composing an email.
var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrMissingFields = errors.New("missing required fields")
)

var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

//go:embed templates/update.html
var templateFS embed.FS

var updateTemplate = template.Must(template.ParseFS(templateFS, "templates/update.html"))

// Message is a rendered HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ValidateAddress checks that addr looks like user@host.tld.
func ValidateAddress(addr string) error {
	if !addressPattern.MatchString(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, addr)
	}
	return nil
}

// Composer renders update emails. Model-generated text is stripped of all
// markup before it reaches the template.
type Composer struct {
	siteURL string
	policy  *bluemonday.Policy
}

// NewComposer creates a Composer. siteURL, when set, is linked in the footer.
func NewComposer(siteURL string) *Composer {
	return &Composer{siteURL: siteURL, policy: bluemonday.StrictPolicy()}
}

type updateView struct {
	Title   string
	Source  string
	Date    string
	URL     string
	SiteURL string
	Items   *enrich.ActionItems
}

// Compose validates the recipient and renders the email for item. items may
// be nil, in which case only the notice header and link are included.
func (c *Composer) Compose(to string, item crawler.ScrapedItem, items *enrich.ActionItems) (Message, error) {
	to = strings.TrimSpace(to)
	if to == "" || item.Title == "" || item.URL == "" {
		return Message{}, ErrMissingFields
	}
	if err := ValidateAddress(to); err != nil {
		return Message{}, err
	}

	view := updateView{
		Title:   item.Title,
		Source:  item.Source,
		Date:    item.Date,
		URL:     item.URL,
		SiteURL: c.siteURL,
	}
	if items != nil {
		clean := enrich.ActionItems{
			Affected:           c.sanitizeAll(items.Affected),
			Deadlines:          c.sanitizeAll(items.Deadlines),
			Actions:            c.sanitizeAll(items.Actions),
			RelatedRegulations: c.sanitizeAll(items.RelatedRegulations),
			Summary:            c.sanitize(items.Summary),
		}
		view.Items = &clean
	}

	var buf bytes.Buffer
	if err := updateTemplate.Execute(&buf, view); err != nil {
		return Message{}, fmt.Errorf("render email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "📋 Regulation Update: " + item.Title,
		HTML:    buf.String(),
	}, nil
}

// sanitize strips markup. bluemonday escapes entities and html/template
// escapes again, so the text is unescaped in between.
func (c *Composer) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}

func (c *Composer) sanitizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if clean := c.sanitize(v); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
