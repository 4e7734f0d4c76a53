package telematics

import (
	"context"
	"net/url"
	"strconv"
)

// RoutePoint is one positioned message inside an interval.
type RoutePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Speed     *float64
	Timestamp *int64
}

// ListCalculators returns every calculator configured upstream.
func (c *Client) ListCalculators(ctx context.Context) ([]Document, error) {
	return c.Get(ctx, "/gw/calcs/all", nil, true)
}

// GetCalculator returns one calculator, or nil when it does not exist.
func (c *Client) GetCalculator(ctx context.Context, calcID int64) (Document, error) {
	docs, err := c.Get(ctx, "/gw/calcs/"+formatID(calcID), nil, true)
	if err != nil {
		return nil, err
	}
	return first(docs), nil
}

// CreateTripCalculator provisions an interval calculator that segments the
// position stream into trips and accumulates the counters the normalizer
// expects.
func (c *Client) CreateTripCalculator(ctx context.Context, name string) (Document, error) {
	if name == "" {
		name = "trips_detector"
	}

	calc := map[string]any{
		"name": name,
		"type": "intervals",
		"selectors": []any{
			map[string]any{
				"type":       "expression",
				"expression": "position.speed > 5",
			},
		},
		"counters": []any{
			map[string]any{"type": "mileage", "name": "distance"},
			map[string]any{"type": "duration", "name": "duration"},
			map[string]any{"type": "expression", "name": "max_speed", "expression": "max(position.speed)"},
			map[string]any{"type": "expression", "name": "avg_speed", "expression": "avg(position.speed)"},
		},
	}

	docs, err := c.Post(ctx, "/gw/calcs", []any{calc})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/gw/calcs/all")
	return first(docs), nil
}

// AssignDevicesToCalculator attaches devices to a calculator.
func (c *Client) AssignDevicesToCalculator(ctx context.Context, calcID int64, deviceIDs []int64) error {
	_, err := c.Post(ctx, "/gw/calcs/"+formatID(calcID)+"/devices", map[string]any{
		"devices": deviceIDs,
	})
	return err
}

// DeviceIntervals fetches trip intervals for one device inside an optional
// [from, to] Unix-timestamp window and normalizes each record. Interval
// listings are never cached: the window contents change as trips close.
func (c *Client) DeviceIntervals(ctx context.Context, calcID, deviceID int64, from, to *int64, limit int) ([]Interval, error) {
	params := url.Values{}
	if from != nil {
		params.Set("begin.from", strconv.FormatInt(*from, 10))
	}
	if to != nil {
		params.Set("begin.to", strconv.FormatInt(*to, 10))
	}
	params.Set("limit", strconv.Itoa(limit))

	path := "/gw/calcs/" + formatID(calcID) + "/devices/" + formatID(deviceID) + "/intervals/all"
	docs, err := c.Get(ctx, path, params, false)
	if err != nil {
		return nil, err
	}

	intervals := make([]Interval, 0, len(docs))
	for _, doc := range docs {
		intervals = append(intervals, NormalizeInterval(doc))
	}
	return intervals, nil
}

// LastInterval returns the most recent interval for a device, or nil.
func (c *Client) LastInterval(ctx context.Context, calcID, deviceID int64) (*Interval, error) {
	path := "/gw/calcs/" + formatID(calcID) + "/devices/" + formatID(deviceID) + "/intervals/last"
	docs, err := c.Get(ctx, path, nil, false)
	if err != nil {
		return nil, err
	}
	doc := first(docs)
	if doc == nil {
		return nil, nil
	}
	iv := NormalizeInterval(doc)
	return &iv, nil
}

// GetInterval returns one interval by id, or nil.
func (c *Client) GetInterval(ctx context.Context, calcID, deviceID, intervalID int64) (*Interval, error) {
	path := "/gw/calcs/" + formatID(calcID) + "/devices/" + formatID(deviceID) + "/intervals/" + formatID(intervalID)
	docs, err := c.Get(ctx, path, nil, false)
	if err != nil {
		return nil, err
	}
	doc := first(docs)
	if doc == nil {
		return nil, nil
	}
	iv := NormalizeInterval(doc)
	return &iv, nil
}

// IntervalMessages returns the positioned messages of an interval, dropping
// messages without coordinates. Used for lazy route backfill.
func (c *Client) IntervalMessages(ctx context.Context, calcID, deviceID, intervalID int64) ([]RoutePoint, error) {
	path := "/gw/calcs/" + formatID(calcID) + "/devices/" + formatID(deviceID) +
		"/intervals/" + formatID(intervalID) + "/messages/all"
	docs, err := c.Get(ctx, path, nil, false)
	if err != nil {
		return nil, err
	}

	points := make([]RoutePoint, 0, len(docs))
	for _, doc := range docs {
		lat := doc.FloatPtr("position.latitude")
		lon := doc.FloatPtr("position.longitude")
		if lat == nil || lon == nil {
			continue
		}

		point := RoutePoint{
			Latitude:  *lat,
			Longitude: *lon,
			Speed:     doc.FloatPtr("position.speed"),
		}
		if ts, ok := doc.Int64("timestamp"); ok {
			point.Timestamp = &ts
		}
		points = append(points, point)
	}
	return points, nil
}

// UpdateCalculator updates a calculator's configuration.
func (c *Client) UpdateCalculator(ctx context.Context, calcID int64, updates map[string]any) (Document, error) {
	docs, err := c.Put(ctx, "/gw/calcs/"+formatID(calcID), []any{updates})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/gw/calcs/all", "/gw/calcs/"+formatID(calcID))
	return first(docs), nil
}

// DeleteCalculator removes a calculator.
func (c *Client) DeleteCalculator(ctx context.Context, calcID int64) error {
	_, err := c.Delete(ctx, "/gw/calcs/"+formatID(calcID))
	if err != nil {
		return err
	}
	c.Invalidate("/gw/calcs/all", "/gw/calcs/"+formatID(calcID))
	return nil
}
