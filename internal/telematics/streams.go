package telematics

import "context"

// CreateWebhookStream provisions an upstream HTTP stream that POSTs device
// data to the given webhook URL.
func (c *Client) CreateWebhookStream(ctx context.Context, name, webhookURL string) (Document, error) {
	if name == "" {
		name = "fleet_tracker_webhook"
	}

	docs, err := c.Post(ctx, "/gw/streams", []any{map[string]any{
		"name":        name,
		"protocol_id": "http",
		"configuration": map[string]any{
			"uri":    webhookURL,
			"method": "POST",
			"headers": map[string]any{
				"Content-Type": "application/json",
			},
		},
	}})
	if err != nil {
		return nil, err
	}
	return first(docs), nil
}

// AssignDevicesToStream subscribes devices to a stream.
func (c *Client) AssignDevicesToStream(ctx context.Context, streamID int64, deviceIDs []int64) error {
	_, err := c.Post(ctx, "/gw/streams/"+formatID(streamID)+"/devices", map[string]any{
		"devices": deviceIDs,
	})
	return err
}

// ListStreams returns every stream defined upstream.
func (c *Client) ListStreams(ctx context.Context) ([]Document, error) {
	return c.Get(ctx, "/gw/streams/all", nil, false)
}

// DeleteStream removes a stream.
func (c *Client) DeleteStream(ctx context.Context, streamID int64) error {
	_, err := c.Delete(ctx, "/gw/streams/"+formatID(streamID))
	return err
}
