package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-lifecycle/config"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-lifecycle/pkg/mailer/templates"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, body any) error {
	return m.Called(ctx, body).Error(0)
}

func registeredEvent(t *testing.T) entity.UserRegistered {
	t.Helper()
	login, err := entity.NewUserLogin("a@b.com")
	require.NoError(t, err)
	pwd, err := entity.NewUserPassword("password1")
	require.NoError(t, err)
	return entity.UserRegistered{
		Base:           event.NewBase(entity.UserRegisteredEventType, 5, 1),
		Login:          login,
		Password:       pwd,
		ActivationHash: "abc123",
	}
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:       "user-lifecycle",
		CompanyName:   "Acme",
		ActivationURL: "https://acme.test/api/users/activate/",
	}
}

func TestQueueNotifier_Job(t *testing.T) {
	n := NewQueueNotifier(new(MockPublisher), testConfig())
	e := registeredEvent(t)

	job := n.Job(repository.UserView{ID: 5, Login: "a@b.com"}, e)
	assert.Equal(t, "a@b.com", job.To)
	assert.Equal(t, mailtpl.Account, job.Template)
	assert.Equal(t, e.EventID(), job.EventID)
	assert.Equal(t, "user.registered", job.Data["Kind"])
	assert.Equal(t, "https://acme.test/api/users/activate/abc123", job.Data["ActivationURL"])
	assert.Equal(t, "Acme", job.Data["CompanyName"])
	assert.NotContains(t, job.Data, "Password")
}

func TestQueueNotifier_JobWithoutActivation(t *testing.T) {
	n := NewQueueNotifier(new(MockPublisher), testConfig())
	e := entity.UserEnabled{Base: event.NewBase(entity.UserEnabledEventType, 5, 3)}

	job := n.Job(repository.UserView{ID: 5, Login: "a@b.com"}, e)
	assert.Equal(t, "user.enabled", job.Data["Kind"])
	assert.Equal(t, "", job.Data["ActivationURL"])
	assert.NotEmpty(t, job.Data["Time"])
}

func TestQueueNotifier_Notify(t *testing.T) {
	pub := new(MockPublisher)
	n := NewQueueNotifier(pub, testConfig())
	e := registeredEvent(t)

	pub.On("PublishJSON", mock.Anything, mock.MatchedBy(func(job mailer.EmailJob) bool {
		return job.To == "a@b.com" && job.EventID == e.EventID()
	})).Return(nil).Once()
	require.NoError(t, n.Notify(context.Background(), repository.UserView{ID: 5, Login: "a@b.com"}, e))
	pub.AssertExpectations(t)

	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()
	err := n.Notify(context.Background(), repository.UserView{ID: 5, Login: "a@b.com"}, e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.registered")
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewLogNotifier(logger)
	e := registeredEvent(t)

	require.NoError(t, n.Notify(context.Background(), repository.UserView{ID: 5, Login: "a@b.com"}, e))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "abc123", entry.Data["activation_hash"])
	assert.Equal(t, int64(5), entry.Data["user_id"])
}
