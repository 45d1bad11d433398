package email

import (
	"context"
	"errors"
	"testing"

	"github.com/bromosky/aventra/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

func testConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:           "smtp.example.com",
		Port:           587,
		Email:          "booking@example.com",
		AppPassword:    "app-password",
		TimeoutSeconds: 5,
	}
}

func TestSender_DisabledWithoutCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.AppPassword = ""
	sender := NewSender(cfg)
	sender.deliver = func(ctx context.Context, msg *mail.Msg) error {
		t.Fatal("deliver must not be called")
		return nil
	}

	assert.False(t, sender.Enabled())
	assert.NoError(t, sender.Send(context.Background(), "sari@example.com", "subject", "body"))
}

func TestSender_NoRecipientIsNoop(t *testing.T) {
	sender := NewSender(testConfig())
	sender.deliver = func(ctx context.Context, msg *mail.Msg) error {
		t.Fatal("deliver must not be called")
		return nil
	}

	assert.True(t, sender.Enabled())
	assert.NoError(t, sender.Send(context.Background(), "  ", "subject", "body"))
}

func TestSender_InvalidRecipient(t *testing.T) {
	sender := NewSender(testConfig())
	sender.deliver = func(ctx context.Context, msg *mail.Msg) error {
		t.Fatal("deliver must not be called")
		return nil
	}

	err := sender.Send(context.Background(), "not an address", "subject", "body")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient address")
}

func TestSender_BuildsMessage(t *testing.T) {
	sender := NewSender(testConfig())

	var got *mail.Msg
	sender.deliver = func(ctx context.Context, msg *mail.Msg) error {
		got = msg
		return nil
	}

	err := sender.Send(context.Background(), "sari@example.com", "Invoice Booking BSM-260203-AB12", "Halo Sari")
	require.NoError(t, err)
	require.NotNil(t, got)
	from, err := got.GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "booking@example.com", from)
	rcpts, err := got.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"sari@example.com"}, rcpts)
	assert.Equal(t, []string{"Invoice Booking BSM-260203-AB12"}, got.GetGenHeader(mail.HeaderSubject))
}

func TestSender_DeliveryErrorIsReturned(t *testing.T) {
	sender := NewSender(testConfig())
	sender.deliver = func(ctx context.Context, msg *mail.Msg) error {
		return errors.New("535 authentication failed")
	}

	err := sender.Send(context.Background(), "sari@example.com", "s", "b")
	assert.EqualError(t, err, "535 authentication failed")
}
