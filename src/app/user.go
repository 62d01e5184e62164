package app

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type (
	UserRecorder interface {
		RecordUser(ctx context.Context, username, email string) error
	}

	// SignupRecorder copies confirmed Cognito users into the users table.
	SignupRecorder struct {
		users UserRecorder
		log   *logrus.Entry
	}
)

func NewSignupRecorder(users UserRecorder, log *logrus.Entry) *SignupRecorder {
	return &SignupRecorder{users: users, log: log}
}

// HandlePostConfirmation records the confirmed user. Recording errors are
// logged and never fail the trigger.
func (r *SignupRecorder) HandlePostConfirmation(ctx context.Context, event events.CognitoEventUserPoolsPostConfirmation) (events.CognitoEventUserPoolsPostConfirmation, error) {
	username := event.UserName
	email := username
	if attr := event.Request.UserAttributes["email"]; attr != "" {
		email = attr
	}

	log := r.log.WithFields(logrus.Fields{
		"username":       username,
		"trigger_source": event.TriggerSource,
		"user_pool_id":   event.UserPoolID,
	})
	log.Info("post confirmation trigger fired")

	if err := r.users.RecordUser(ctx, username, email); err != nil {
		log.WithError(err).Error("can not record confirmed user")
		return event, nil
	}
	log.Info("confirmed user recorded")
	return event, nil
}
