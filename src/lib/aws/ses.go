package aws

import (
	"context"
	"errors"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var sesClient *ses.Client

func GetSESClient() *ses.Client {
	if sesClient != nil {
		return sesClient
	}
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	sesClient = ses.NewFromConfig(cfg)
	return sesClient
}

func NewSESClient(c *ses.Client) {
	sesClient = c
}

// SESSendHTML sends a single HTML message and returns its message id.
func SESSendHTML(ctx context.Context, from, to, subject, html string) (string, error) {
	c := GetSESClient()
	if c == nil {
		return "", errors.New("ses client is not available")
	}
	input := &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{to}},
		Source:      aws.String(from),
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
			},
		},
	}
	out, err := c.SendEmail(ctx, input)
	if err != nil {
		log.Printf("Error sending email: %s\n", err.Error())
		return "", err
	}
	log.Printf("Sent email with id: %s\n", *out.MessageId)
	return *out.MessageId, nil
}
