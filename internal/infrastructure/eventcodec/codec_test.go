package eventcodec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
)

func registered(t *testing.T) entity.UserRegistered {
	t.Helper()
	login, err := entity.NewUserLogin("a@b.com")
	require.NoError(t, err)
	pwd, err := entity.NewUserPassword("password1")
	require.NoError(t, err)
	return entity.UserRegistered{
		Base:           event.NewBase(entity.UserRegisteredEventType, 1, 1),
		Login:          login,
		Password:       pwd,
		ActivationHash: "abc",
	}
}

func TestCodec_SealsPasswords(t *testing.T) {
	c := New(bcrypt.MinCost)
	rec, err := c.Encode(registered(t))
	require.NoError(t, err)

	assert.Equal(t, "user.registered", rec.EventType)
	assert.Equal(t, int64(1), rec.AggregateID)
	assert.Equal(t, 1, rec.Version)
	assert.NotContains(t, string(rec.Payload), "password1")

	var p registeredPayload
	require.NoError(t, json.Unmarshal(rec.Payload, &p))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(p.Password), []byte("password1")))
}

func TestCodec_DecodeRestoresEvent(t *testing.T) {
	c := New(bcrypt.MinCost)
	in := registered(t)
	rec, err := c.Encode(in)
	require.NoError(t, err)

	out, err := c.Decode(rec)
	require.NoError(t, err)
	reg, ok := out.(entity.UserRegistered)
	require.True(t, ok)
	assert.Equal(t, in.EventID(), reg.EventID())
	assert.Equal(t, in.Login, reg.Login)
	assert.Equal(t, "abc", reg.ActivationHash)
	assert.True(t, in.OccurredAt().Equal(reg.OccurredAt()))

	// a decoded hash is not hashed again
	again, err := c.Encode(reg)
	require.NoError(t, err)
	var p registeredPayload
	require.NoError(t, json.Unmarshal(again.Payload, &p))
	assert.Equal(t, reg.Password.Value(), p.Password)
}

func TestCodec_AllVariantsDecodeToTheirType(t *testing.T) {
	c := New(bcrypt.MinCost)
	login, _ := entity.NewUserLogin("a@b.com")
	pwd, _ := entity.NewUserPassword("newpassword1")

	events := []entity.UserEvent{
		registered(t),
		entity.UserActivated{Base: event.NewBase(entity.UserActivatedEventType, 1, 2), ActivationHash: "abc"},
		entity.UserEnabled{Base: event.NewBase(entity.UserEnabledEventType, 1, 3)},
		entity.UserDisabled{Base: event.NewBase(entity.UserDisabledEventType, 1, 4)},
		entity.UserPasswordChanged{Base: event.NewBase(entity.UserPasswordChangedEventType, 1, 5), Password: pwd},
		entity.UserUnregistered{Base: event.NewBase(entity.UserUnregisteredEventType, 1, 6), Login: login},
	}
	history := make([]entity.UserEvent, 0, len(events))
	for _, e := range events {
		rec, err := c.Encode(e)
		require.NoError(t, err)
		out, err := c.Decode(rec)
		require.NoError(t, err)
		assert.IsType(t, e, out)
		assert.Equal(t, e.Version(), out.Version())
		history = append(history, out)
	}

	u, err := entity.ReconstituteUser(history)
	require.NoError(t, err)
	assert.True(t, u.IsUnregistered())
	assert.Equal(t, 6, u.Version())
}

func TestCodec_HashLookingPasswordIsStillSealed(t *testing.T) {
	c := New(bcrypt.MinCost)
	plain, err := bcrypt.GenerateFromPassword([]byte("other1234"), bcrypt.MinCost)
	require.NoError(t, err)
	pwd, err := entity.NewUserPassword(string(plain))
	require.NoError(t, err)

	rec, err := c.Encode(entity.UserPasswordChanged{Base: event.NewBase(entity.UserPasswordChangedEventType, 1, 2), Password: pwd})
	require.NoError(t, err)

	var p passwordChangedPayload
	require.NoError(t, json.Unmarshal(rec.Payload, &p))
	assert.NotEqual(t, string(plain), p.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(p.Password), plain))
}

func TestCodec_DecodeUnknownType(t *testing.T) {
	_, err := New(0).Decode(Record{EventType: "user.renamed", Payload: []byte(`{}`)})
	assert.ErrorIs(t, err, entity.ErrUnexpectedEvent)
}

func TestCodec_DecodeBadPayload(t *testing.T) {
	_, err := New(0).Decode(Record{EventType: "user.registered", Payload: []byte(`{"login":"nope"}`)})
	assert.ErrorIs(t, err, entity.ErrInvalidArgument)

	_, err = New(0).Decode(Record{EventType: "user.activated", Payload: []byte(`not json`)})
	assert.Error(t, err)
}
