package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tapnex/GC-SlotService/pkg/metrics"
)

// Client клиент сервиса realtime-уведомлений
// Публикует события изменения доступности слотов, чтобы открытые у клиентов
// страницы бронирования обновлялись без перезагрузки
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        Logger
}

// NewClient создает новый экземпляр клиента realtime-сервиса
// metrics может быть nil, если сбор метрик отключен
func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
		log:     log,
	}
}

// NotifySlotUpdated отправляет событие изменения доступности слота
// Уведомления best-effort: ошибка логируется и не влияет на бизнес-операцию,
// из-за которой доступность поменялась
func (c *Client) NotifySlotUpdated(ctx context.Context, gameID, slotID int64) {
	if err := c.publish(ctx, SlotUpdatedEvent{GameID: gameID, SlotID: slotID}); err != nil {
		c.observe("failed")
		c.log.Warn("Realtime notification failed for game=%d slot=%d: %v", gameID, slotID, err)
		return
	}
	c.observe("sent")
	c.log.Info("Realtime notification sent for game=%d slot=%d", gameID, slotID)
}

func (c *Client) observe(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.AvailabilityEvents.WithLabelValues(result).Inc()
}

func (c *Client) publish(ctx context.Context, event SlotUpdatedEvent) error {
	url := fmt.Sprintf("%s/internal/events/slot-updated", c.baseURL)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	return nil
}
