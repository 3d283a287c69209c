package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/stats"
	"interiors-admin-be/internal/utils"

	"go.uber.org/zap"
)

// SettingsStore is the part of the settings repository the notifier reads.
type SettingsStore interface {
	Get(ctx context.Context) (models.AppSettings, error)
}

// NotificationService turns submissions and statistics into admin e-mails.
type NotificationService struct {
	settings     SettingsStore
	templates    *TemplateService
	mailer       Mailer
	dashboardURL string
	logger       *zap.Logger
}

func NewNotificationService(settings SettingsStore, templates *TemplateService, mailer Mailer, dashboardURL string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		settings:     settings,
		templates:    templates,
		mailer:       mailer,
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		logger:       logger,
	}
}

// NotifyNewSubmission mails the notification address about s. It returns
// (false, nil) when notifications are switched off or no address is configured.
func (n *NotificationService) NotifyNewSubmission(ctx context.Context, s models.Submission) (bool, error) {
	settings, err := n.settings.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	if !settings.EmailNotifications || settings.NotificationEmail == "" {
		return false, nil
	}

	rendered, err := n.templates.Render(TemplateNewSubmission, submissionBindings(s, settings.InstantAlerts, n.dashboardURL))
	if err != nil {
		return false, err
	}

	msg := Message{
		To:       []string{settings.NotificationEmail},
		ReplyTo:  s.Email,
		Subject:  rendered.Subject,
		HTMLBody: rendered.HTML,
		TextBody: rendered.Text,
	}
	if settings.CCEmail != "" {
		msg.CC = []string{settings.CCEmail}
	}

	if _, err := n.mailer.Send(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}

// NotifyAsync sends the notification in the background. Failures are logged and
// never reach the caller.
func (n *NotificationService) NotifyAsync(s models.Submission) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sent, err := n.NotifyNewSubmission(ctx, s)
		if err != nil {
			n.logger.Warn("submission notification failed",
				zap.String("submissionId", s.ID),
				zap.String("category", string(ClassifyStorageError(err))),
				zap.Error(err),
			)
			return
		}
		if sent {
			n.logger.Debug("submission notification sent", zap.String("submissionId", s.ID))
		}
	}()
}

// SendDigest mails a statistics summary to the notification address.
func (n *NotificationService) SendDigest(ctx context.Context, settings models.AppSettings, res stats.Result) error {
	if settings.NotificationEmail == "" {
		return nil
	}
	rendered, err := n.templates.Render(TemplateDailyDigest, digestBindings(res, settings.StatusLabels))
	if err != nil {
		return err
	}
	msg := Message{
		To:       []string{settings.NotificationEmail},
		Subject:  rendered.Subject,
		HTMLBody: rendered.HTML,
		TextBody: rendered.Text,
	}
	if settings.CCEmail != "" {
		msg.CC = []string{settings.CCEmail}
	}
	_, err = n.mailer.Send(ctx, msg)
	return err
}

func submissionBindings(s models.Submission, instant bool, dashboardURL string) map[string]interface{} {
	link := ""
	if dashboardURL != "" {
		link = dashboardURL + "/admin/submissions/" + s.ID
	}
	return map[string]interface{}{
		"instant":      instant,
		"dashboardUrl": link,
		"budgetLabel":  s.BudgetRange.Label(),
		"submittedAt":  s.SubmittedAt.UTC().Format("Jan 2, 2006 15:04 MST"),
		"summary":      detailsSummary(s.ProjectDetails),
		"submission": map[string]interface{}{
			"id":             s.ID,
			"name":           s.Name,
			"email":          s.Email,
			"phone":          s.Phone,
			"projectType":    s.ProjectType,
			"projectDetails": s.ProjectDetails,
		},
	}
}

// detailsSummary is set only when the details are too long to skim.
func detailsSummary(details string) string {
	ex := Excerpt(details, excerptSentences, excerptMaxChars)
	if ex == strings.Join(strings.Fields(details), " ") {
		return ""
	}
	return ex
}

func digestBindings(res stats.Result, labels models.StatusLabels) map[string]interface{} {
	weeks := make([]map[string]interface{}, len(res.WeeklySeries))
	for i, w := range res.WeeklySeries {
		weeks[i] = map[string]interface{}{"week": w.Label, "count": w.Count}
	}
	return map[string]interface{}{
		"date": res.GeneratedAt.UTC().Format("Jan 2, 2006"),
		"labels": map[string]interface{}{
			"new":      labels.New,
			"replied":  labels.Replied,
			"archived": labels.Archived,
		},
		"stats": map[string]interface{}{
			"total":        res.Total,
			"responseRate": res.ResponseRate,
			"newInWindow":  res.NewInWindow,
			"windowDays":   res.WindowDays,
			"countsByStatus": map[string]interface{}{
				"new":      res.CountsByStatus.New,
				"replied":  res.CountsByStatus.Replied,
				"archived": res.CountsByStatus.Archived,
			},
			"topProjectType": res.TopProjectType,
			"weeklySeries":   weeks,
		},
	}
}

func redactedRecipient(msg Message) string {
	if len(msg.To) == 0 {
		return ""
	}
	return utils.RedactEmail(msg.To[0])
}
