package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/restom/restom-backend/pkg/config"
	"github.com/restom/restom-backend/pkg/logger"
)

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(cfg config.SMSConfig) (*TwilioSender, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFrom == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &TwilioSender{client: client, from: cfg.TwilioFrom}, nil
}

func (t *TwilioSender) Send(ctx context.Context, phone, message string) (Result, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(phone)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to send SMS", "error", err, "phone", phone)
		return Result{}, err
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	logger.InfoContext(ctx, "SMS sent", "phone", phone, "sid", sid)
	return Result{Delivered: true}, nil
}
