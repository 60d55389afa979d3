// Package notify emails the hiring team about new matches.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/apperr"
	"github.com/spigell/airecruiter/internal/models"
)

//go:embed match.html
var matchTemplate string

var tmpl = template.Must(template.New("match").Parse(matchTemplate))

// Message is a rendered HTML email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Sender delivers one message.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Recorder stores the outcome of each delivery attempt.
type Recorder interface {
	SaveEmailNotification(ctx context.Context, notification *models.EmailNotification) (string, error)
}

type Service struct {
	sender   Sender
	recorder Recorder
	from     string
	to       []string
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(sender Sender, recorder Recorder, from string, to []string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		sender:   sender,
		recorder: recorder,
		from:     from,
		to:       to,
		logger:   logger,
		now:      time.Now,
	}
}

type matchView struct {
	Match models.MatchResult
	Score int
	Date  string
}

// SendMatchNotification emails the match to the configured recipients and
// records the attempt. A failure to record a delivered email is only logged.
func (s *Service) SendMatchNotification(ctx context.Context, match models.MatchResult) (bool, error) {
	if s.sender == nil {
		return false, apperr.Configuration("send match notification", errors.New("no email sender configured"))
	}
	if len(s.to) == 0 {
		return false, apperr.Configuration("send match notification", errors.New("no email recipients configured"))
	}

	subject := Subject(match)
	body, err := Render(match, s.now())
	if err != nil {
		return false, err
	}

	log := s.logger.With(
		zap.String("match_id", match.ID),
		zap.String("sender", s.sender.Name()),
	)

	sendErr := s.sender.Send(ctx, Message{
		From:    s.from,
		To:      s.to,
		Subject: subject,
		HTML:    body,
	})

	record := &models.EmailNotification{
		MatchID:   match.ID,
		Recipient: strings.Join(s.to, ", "),
		Subject:   subject,
		Body:      body,
		Status:    models.NotificationStatusSent,
	}
	if sendErr != nil {
		record.Status = models.NotificationStatusFailed
		record.Error = sendErr.Error()
	}

	if s.recorder != nil {
		if _, err := s.recorder.SaveEmailNotification(ctx, record); err != nil {
			log.Warn("failed to record email notification", zap.Error(err))
		}
	}

	if sendErr != nil {
		log.Error("failed to send match notification", zap.Error(sendErr))
		return false, apperr.Collaborator("send match notification", sendErr)
	}

	log.Info("match notification sent", zap.Strings("to", s.to))
	return true, nil
}

func Subject(match models.MatchResult) string {
	name := match.CandidateName
	if name == "" {
		name = "Bench candidate " + match.CandidateID
	}
	title := match.JobTitle
	if title == "" {
		title = "job " + match.JobID
	}
	return fmt.Sprintf("New match: %s for %s (%d%%)", name, title, scorePercent(match.OverallScore))
}

func Render(match models.MatchResult, now time.Time) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, matchView{
		Match: match,
		Score: scorePercent(match.OverallScore),
		Date:  now.Format("Jan 02, 2006"),
	})
	if err != nil {
		return "", fmt.Errorf("render match email: %w", err)
	}
	return buf.String(), nil
}

func scorePercent(score float64) int {
	return int(score*100 + 0.5)
}
