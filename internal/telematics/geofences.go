package telematics

import "context"

// ListGeofences returns every geofence defined upstream.
func (c *Client) ListGeofences(ctx context.Context, useCache bool) ([]Document, error) {
	return c.Get(ctx, "/gw/geofences/all", nil, useCache)
}

// GetGeofence returns one geofence, or nil when it does not exist.
func (c *Client) GetGeofence(ctx context.Context, geofenceID int64, useCache bool) (Document, error) {
	docs, err := c.Get(ctx, "/gw/geofences/"+formatID(geofenceID), nil, useCache)
	if err != nil {
		return nil, err
	}
	return first(docs), nil
}

// CreateGeofence mirrors a locally created geofence upstream. The geometry
// document uses the platform's convention (circle center object or polygon
// [lon, lat] rings).
func (c *Client) CreateGeofence(ctx context.Context, name string, geometry map[string]any) (Document, error) {
	docs, err := c.Post(ctx, "/gw/geofences", []any{map[string]any{
		"name":     name,
		"geometry": geometry,
	}})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/gw/geofences/all")
	return first(docs), nil
}

// UpdateGeofence updates an upstream geofence.
func (c *Client) UpdateGeofence(ctx context.Context, geofenceID int64, updates map[string]any) (Document, error) {
	docs, err := c.Put(ctx, "/gw/geofences/"+formatID(geofenceID), []any{updates})
	if err != nil {
		return nil, err
	}
	c.Invalidate("/gw/geofences/all", "/gw/geofences/"+formatID(geofenceID))
	return first(docs), nil
}

// DeleteGeofence removes an upstream geofence.
func (c *Client) DeleteGeofence(ctx context.Context, geofenceID int64) error {
	_, err := c.Delete(ctx, "/gw/geofences/"+formatID(geofenceID))
	if err != nil {
		return err
	}
	c.Invalidate("/gw/geofences/all", "/gw/geofences/"+formatID(geofenceID))
	return nil
}

// AssignGeofenceToCalculator attaches a geofence to a calculator so the
// platform emits enter/exit events for it.
func (c *Client) AssignGeofenceToCalculator(ctx context.Context, geofenceID, calcID int64) error {
	_, err := c.Post(ctx, "/gw/geofences/"+formatID(geofenceID)+"/calcs", map[string]any{
		"calcs": []int64{calcID},
	})
	return err
}
