package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"

	"github.com/aquametrics/pluviometro/internal/domain"
)

// SNSClient wraps AWS SNS for rainfall alert notifications.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
	ctx      context.Context
}

func NewSNSClient(region, topicArn string) (*SNSClient, error) {
	ctx := context.Background()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
		ctx:      ctx,
	}, nil
}

// SendAlert publishes a notification to the configured topic.
func (c *SNSClient) SendAlert(subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	result, err := c.svc.Publish(c.ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	log.Info().Str("message_id", aws.ToString(result.MessageId)).Msg("alert sent")
	return nil
}

// SendRainAlert formats and publishes a heavy-rainfall alert for one
// station reading.
func (c *SNSClient) SendRainAlert(station *domain.Station, chuva float64, at time.Time) error {
	subject := fmt.Sprintf("Heavy Rainfall Alert: %s", station.Nome)
	message := fmt.Sprintf(
		"Heavy Rainfall Detected\n\n"+
			"Station: %s\n"+
			"Serial: %s\n"+
			"City: %s/%s\n"+
			"Rainfall: %.2f mm\n"+
			"Time: %s\n\n"+
			"Please check drainage conditions in the area.",
		station.Nome,
		station.NumeroSerie,
		station.Cidade,
		station.Estado,
		chuva,
		at.Format(time.RFC3339),
	)

	return c.SendAlert(subject, message)
}
