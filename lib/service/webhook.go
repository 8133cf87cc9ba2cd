package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/factorhub/factorhub.go/common"
	"github.com/factorhub/factorhub.go/db/models"
)

type webhookPayload struct {
	Event   string         `json:"event"`
	Invoice models.Invoice `json:"invoice"`
}

// StartWebhookSubscription forwards every invoice lifecycle event to the
// configured webhook url until the context is cancelled.
func (svc *FactorhubService) StartWebhookSubscription(ctx context.Context) {

	svc.Logger.Infof("Starting webhook subscription with webhook url %s", svc.Config.WebhookUrl)

	topics := []string{
		common.InvoiceEventTokenized,
		common.InvoiceEventSold,
		common.InvoiceEventRepaid,
		common.InvoiceEventDefaulted,
	}
	type sub struct {
		topic string
		ch    chan models.Invoice
	}
	subs := make([]sub, 0, len(topics))
	for _, topic := range topics {
		ch := make(chan models.Invoice)
		svc.InvoicePubSub.Subscribe(topic, ch)
		subs = append(subs, sub{topic: topic, ch: ch})
	}

	events := make(chan webhookPayload)
	for _, s := range subs {
		go func(s sub) {
			for invoice := range s.ch {
				events <- webhookPayload{Event: s.topic, Invoice: invoice}
			}
		}(s)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-events:
			svc.postToWebhook(payload)
		}
	}
}

func (svc *FactorhubService) postToWebhook(payload webhookPayload) {

	body := new(bytes.Buffer)
	err := json.NewEncoder(body).Encode(payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	resp, err := http.Post(svc.Config.WebhookUrl, "application/json", body)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
