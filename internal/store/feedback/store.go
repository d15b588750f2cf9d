// Package feedback files user issue reports with the daemon.
package feedback

import (
	"context"
	"log/slog"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/reactive"
	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

// Store sends issue reports. It has no reactions.
type Store struct {
	api     storeapi.FeedbackService
	logger  *slog.Logger
	now     func() time.Time
	sending *reactive.Value[bool]
}

func New(root storeapi.Root, api storeapi.FeedbackService) (*Store, error) {
	if api == nil {
		return nil, ferrors.ConfigError("feedback service is required").Build()
	}
	return &Store{
		api:     api,
		logger:  root.Logger("feedback"),
		now:     time.Now,
		sending: reactive.NewValue(false),
	}, nil
}

// Sending is true while a report is in flight.
func (s *Store) Sending() reactive.Observable[bool] {
	return s.sending
}

// ReportIssue validates and sends issue.
func (s *Store) ReportIssue(ctx context.Context, issue storeapi.Issue) error {
	issue.Description = strings.TrimSpace(issue.Description)
	if issue.Description == "" {
		return ferrors.ValidationError("issue description cannot be empty").Build()
	}
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = s.now()
	}

	s.sending.Set(true)
	defer s.sending.Set(false)

	if err := s.api.ReportIssue(ctx, issue); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to report issue").Build()
	}
	s.logger.Info("Issue reported", slog.Bool("has_email", issue.Email != ""))
	return nil
}
