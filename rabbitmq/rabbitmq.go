package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/factorhub/factorhub.go/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

// bufPool is a classic buffer pool pattern that allows more clever reuse of heap memory.
// Instead of allocating new memory every time we encode an event we reuse
// buffers from this pool; it scales with the number of publishing goroutines.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const (
	contentTypeJSON = "application/json"
)

// InvoiceEvent is the message published for every invoice lifecycle change.
type InvoiceEvent struct {
	Event   string          `json:"event"`
	Invoice *models.Invoice `json:"invoice"`
}

type Client interface {
	PublishInvoiceEvent(ctx context.Context, event string, invoice *models.Invoice) error
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	conn *amqp.Connection

	publishChannel *amqp.Channel

	logger *lecho.Logger

	invoiceExchange  string
	exchangeDeclared bool
}

type ClientOption = func(client *DefaultClient)

func WithInvoiceExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.invoiceExchange = exchange
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

// Dial sets up a connection to rabbitmq with a channel that is ready to publish
func Dial(uri string, options ...ClientOption) (Client, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}

	publishChannel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	client := &DefaultClient{
		conn: conn,

		publishChannel: publishChannel,

		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),

		invoiceExchange: "factorhub_invoice",
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

func (client *DefaultClient) Close() error { return client.conn.Close() }

func (client *DefaultClient) declareExchange() error {
	if client.exchangeDeclared {
		return nil
	}
	err := client.publishChannel.ExchangeDeclare(
		client.invoiceExchange,
		// topic exchanges route messages to queues based on a routing key
		"topic",
		// Durable and Non-Auto-Deleted exchanges will survive server restarts and remain
		// declared when there are no remaining bindings.
		true,
		false,
		// Non-Internal exchanges accept direct publishing
		false,
		// Nowait: We set this to false as we want to wait for a server response
		// to check whether the exchange was created succesfully
		false,
		nil,
	)
	if err == nil {
		client.exchangeDeclared = true
	}
	return err
}

// PublishInvoiceEvent publishes an invoice lifecycle event with the event name
// as the routing key (invoice.tokenized, invoice.sold, invoice.repaid,
// invoice.defaulted).
func (client *DefaultClient) PublishInvoiceEvent(ctx context.Context, event string, invoice *models.Invoice) error {
	if err := client.declareExchange(); err != nil {
		captureErr(client.logger, err)
		return err
	}

	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)

	err := json.NewEncoder(payload).Encode(InvoiceEvent{Event: event, Invoice: invoice})
	if err != nil {
		return err
	}

	err = client.publishChannel.PublishWithContext(ctx,
		client.invoiceExchange,
		event,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        payload.Bytes(),
		},
	)
	if err != nil {
		captureErr(client.logger, err)
		return err
	}

	client.logger.Debugf("Successfully published %s for invoice %d", event, invoice.ID)

	return nil
}

func captureErr(logger *lecho.Logger, err error) {
	logger.Error(err)
	sentry.CaptureException(err)
}
