package lib

import (
	"context"
	"errors"
	"log"
	"os"
	"roomrent/src/config"
	"time"

	"github.com/wneessen/go-mail"
)

var ErrSMTPNotConfigured = errors.New("smtp is not configured")

func GetSMTPClient() (*mail.Client, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, ErrSMTPNotConfigured
	}
	port := config.GetSMTPPort()
	user := os.Getenv("SMTP_USERNAME")
	pass := os.Getenv("SMTP_PASSWORD")
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(pass),
		mail.WithTimeout(15 * time.Second),
	}
	if port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	c, err := mail.NewClient(host, opts...)
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return c, nil
}

// InvalidAddressError marks a recipient or sender the message rejected.
type InvalidAddressError struct {
	Err error
}

func (e *InvalidAddressError) Error() string { return e.Err.Error() }
func (e *InvalidAddressError) Unwrap() error { return e.Err }

// SendMail dials the SMTP server, delivers one message and closes the
// connection.
func SendMail(ctx context.Context, inputParams *SendMailInput) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(inputParams.FromName, inputParams.From); err != nil {
		log.Printf("Failed to set From address: %s\n", err.Error())
		return &InvalidAddressError{Err: err}
	}
	if err := msg.To(inputParams.To...); err != nil {
		log.Printf("Failed to set To address: %s\n", err.Error())
		return &InvalidAddressError{Err: err}
	}
	if inputParams.ReplyTo != "" {
		if err := msg.ReplyTo(inputParams.ReplyTo); err != nil {
			log.Printf("Failed to set Reply-To address: %s\n", err.Error())
		}
	}
	msg.Subject(inputParams.Subject)
	if inputParams.Html {
		msg.SetBodyString(mail.TypeTextHTML, inputParams.Body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, inputParams.Body)
	}
	c, err := GetSMTPClient()
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

type SendMailInput struct {
	From     string
	FromName string
	To       []string
	ReplyTo  string
	Subject  string
	Body     string
	Html     bool
}
