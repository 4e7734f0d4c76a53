package telematics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Location is a device's last known position as reported by telemetry.
// All fields are nil together when the device has never reported.
type Location struct {
	Latitude  *float64
	Longitude *float64
	Speed     *float64
	Timestamp *int64
}

// ListDevices returns every device registered upstream.
func (c *Client) ListDevices(ctx context.Context, useCache bool) ([]Document, error) {
	return c.Get(ctx, "/gw/devices/all", nil, useCache)
}

// GetDevice returns a single upstream device, or nil when it does not exist.
func (c *Client) GetDevice(ctx context.Context, deviceID int64, useCache bool) (Document, error) {
	docs, err := c.Get(ctx, "/gw/devices/"+formatID(deviceID), nil, useCache)
	if err != nil {
		return nil, err
	}
	return first(docs), nil
}

// DeviceTelemetry returns the last known values for a device, optionally
// restricted to a field list.
func (c *Client) DeviceTelemetry(ctx context.Context, deviceID int64, fields []string, useCache bool) (Document, error) {
	path := "/gw/devices/" + formatID(deviceID) + "/telemetry"
	if len(fields) > 0 {
		path += "/" + strings.Join(fields, ",")
	}

	docs, err := c.Get(ctx, path, nil, useCache)
	if err != nil {
		return nil, err
	}
	return first(docs), nil
}

// DeviceLocation extracts position, speed and as-of timestamp from telemetry.
// Telemetry values may arrive as scalars or as {value, ts} objects.
func (c *Client) DeviceLocation(ctx context.Context, deviceID int64, useCache bool) (Location, error) {
	fields := []string{
		"position.latitude",
		"position.longitude",
		"position.speed",
		"timestamp",
	}

	doc, err := c.DeviceTelemetry(ctx, deviceID, fields, useCache)
	if err != nil {
		return Location{}, err
	}
	if doc == nil {
		return Location{}, nil
	}

	data := doc.Sub("telemetry")
	if data == nil {
		data = doc
	}

	loc := Location{
		Latitude:  telemetryFloat(data, "position.latitude"),
		Longitude: telemetryFloat(data, "position.longitude"),
		Speed:     telemetryFloat(data, "position.speed"),
	}
	if ts := telemetryFloat(data, "timestamp"); ts != nil {
		v := int64(*ts)
		loc.Timestamp = &v
	}
	return loc, nil
}

// DeviceMessages returns historical messages for a device, newest window
// first as delivered upstream. Not cached: message history grows constantly.
func (c *Client) DeviceMessages(ctx context.Context, deviceID int64, from, to *int64, limit int) ([]Document, error) {
	params := url.Values{}
	if from != nil || to != nil {
		window := map[string]any{}
		if from != nil {
			window["from"] = *from
		}
		if to != nil {
			window["to"] = *to
		}
		data, err := json.Marshal(map[string]any{"begin": window})
		if err != nil {
			return nil, fmt.Errorf("telematics: encode message window: %w", err)
		}
		params.Set("data", string(data))
	}
	params.Set("limit", strconv.Itoa(limit))

	return c.Get(ctx, "/gw/devices/"+formatID(deviceID)+"/messages", params, false)
}

// CreateDevice registers a device upstream.
func (c *Client) CreateDevice(ctx context.Context, device map[string]any) (Document, error) {
	docs, err := c.Post(ctx, "/gw/devices", []any{device})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/gw/devices/all")
	return first(docs), nil
}

// UpdateDevice updates an upstream device and invalidates its cached reads.
func (c *Client) UpdateDevice(ctx context.Context, deviceID int64, updates map[string]any) (Document, error) {
	docs, err := c.Put(ctx, "/gw/devices/"+formatID(deviceID), []any{updates})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/gw/devices/all", "/gw/devices/"+formatID(deviceID))
	return first(docs), nil
}

// DeleteDevice removes an upstream device.
func (c *Client) DeleteDevice(ctx context.Context, deviceID int64) error {
	_, err := c.Delete(ctx, "/gw/devices/"+formatID(deviceID))
	if err != nil {
		return err
	}
	c.Invalidate("/gw/devices/all", "/gw/devices/"+formatID(deviceID))
	return nil
}

// telemetryFloat unwraps a telemetry field that is either a bare number or a
// {value, ts} object.
func telemetryFloat(data Document, field string) *float64 {
	v, ok := data[field]
	if !ok || v == nil {
		return nil
	}
	if obj, ok := v.(map[string]any); ok {
		v = obj["value"]
	}
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func first(docs []Document) Document {
	if len(docs) == 0 {
		return nil
	}
	return docs[0]
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
