// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package mail

import (
	"context"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/samber/oops"
)

// sesAPI is the subset of the SES client used by SESSender.
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender sends email through AWS SES.
type SESSender struct {
	client sesAPI
	from   string
}

// NewSESSender loads the default AWS configuration for region.
func NewSESSender(ctx context.Context, region, from string) (*SESSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, oops.In("mail").Code("MAIL_CONFIG_FAILED").With("region", region).Wrap(err)
	}
	return &SESSender{client: ses.NewFromConfig(cfg), from: from}, nil
}

// Send delivers msg as an HTML email.
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	to := (&mail.Address{Name: msg.ToName, Address: msg.To}).String()
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return sendError("ses send", err)
	}
	return nil
}
