package app

import (
	"context"
	"errors"
	"testing"

	repository_mock "gallery/src/repository/mock"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func confirmationEvent(userName string, attrs map[string]string) events.CognitoEventUserPoolsPostConfirmation {
	event := events.CognitoEventUserPoolsPostConfirmation{}
	event.UserName = userName
	event.TriggerSource = "PostConfirmation_ConfirmSignUp"
	event.UserPoolID = "eu-west-2_abc"
	event.Request.UserAttributes = attrs
	return event
}

func TestSignupRecorderRecordsEmail(t *testing.T) {
	store := new(repository_mock.MockStore)
	logger, _ := test.NewNullLogger()
	recorder := NewSignupRecorder(store, logrus.NewEntry(logger))

	store.On("RecordUser", mock.Anything, "sub-1", "a@example.com").Return(nil).Once()

	in := confirmationEvent("sub-1", map[string]string{"email": "a@example.com"})
	out, err := recorder.HandlePostConfirmation(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	store.AssertExpectations(t)
}

func TestSignupRecorderFallsBackToUserName(t *testing.T) {
	store := new(repository_mock.MockStore)
	logger, _ := test.NewNullLogger()
	recorder := NewSignupRecorder(store, logrus.NewEntry(logger))

	store.On("RecordUser", mock.Anything, "sub-2", "sub-2").Return(nil).Once()

	_, err := recorder.HandlePostConfirmation(context.Background(), confirmationEvent("sub-2", nil))
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestSignupRecorderSwallowsStoreErrors(t *testing.T) {
	store := new(repository_mock.MockStore)
	logger, hook := test.NewNullLogger()
	recorder := NewSignupRecorder(store, logrus.NewEntry(logger))

	store.On("RecordUser", mock.Anything, "sub-3", "c@example.com").Return(errors.New("db down"))

	in := confirmationEvent("sub-3", map[string]string{"email": "c@example.com"})
	out, err := recorder.HandlePostConfirmation(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "sub-3", hook.LastEntry().Data["username"])
}
