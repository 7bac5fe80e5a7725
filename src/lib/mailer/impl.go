package mailer

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"roomrent/src/config"
	"roomrent/src/lib"
	awslib "roomrent/src/lib/aws"
	"roomrent/src/types"
)

// Notifier delivers transactional email. Send never fails the caller; the
// outcome reports whether the message left.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) types.NotificationOutcome
}

type SMTPNotifier struct{}

func (SMTPNotifier) Send(ctx context.Context, to, subject, html string) types.NotificationOutcome {
	if _, err := mail.ParseAddress(to); err != nil {
		log.Printf("[mailer] invalid recipient %q: %s\n", to, err.Error())
		return failed(types.KIND_VALIDATION)
	}
	from, fromName := config.GetMailFrom()
	err := lib.SendMail(ctx, &lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       []string{to},
		Subject:  subject,
		Body:     html,
		Html:     true,
	})
	if err != nil {
		log.Printf("[mailer] error sending %q to %s: %s\n", subject, to, err.Error())
		var addrErr *lib.InvalidAddressError
		switch {
		case errors.Is(err, lib.ErrSMTPNotConfigured):
			return failed(types.KIND_GATEWAY_UNAVAILABLE)
		case errors.As(err, &addrErr):
			return failed(types.KIND_VALIDATION)
		}
		return failed(types.KIND_GATEWAY_ERROR)
	}
	return types.NotificationOutcome{Delivered: true}
}

type SESNotifier struct{}

func (SESNotifier) Send(ctx context.Context, to, subject, html string) types.NotificationOutcome {
	if _, err := mail.ParseAddress(to); err != nil {
		log.Printf("[mailer] invalid recipient %q: %s\n", to, err.Error())
		return failed(types.KIND_VALIDATION)
	}
	from, _ := config.GetMailFrom()
	if from == "" {
		log.Println("[mailer] MAIL_FROM is not set")
		return failed(types.KIND_GATEWAY_UNAVAILABLE)
	}
	if _, err := awslib.SESSendHTML(ctx, from, to, subject, html); err != nil {
		log.Printf("[mailer] error sending %q to %s: %s\n", subject, to, err.Error())
		return failed(types.KIND_GATEWAY_ERROR)
	}
	return types.NotificationOutcome{Delivered: true}
}

func failed(kind types.ErrorKind) types.NotificationOutcome {
	return types.NotificationOutcome{Delivered: false, Error: kind}
}

var notifier Notifier

func GetNotifier() Notifier {
	if notifier != nil {
		return notifier
	}
	switch config.GetMailTransport() {
	case "ses":
		notifier = SESNotifier{}
	default:
		notifier = SMTPNotifier{}
	}
	return notifier
}

// NewNotifier replaces the notifier with a custom implementation
func NewNotifier(n Notifier) {
	notifier = n
}
