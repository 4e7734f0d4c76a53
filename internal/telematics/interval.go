package telematics

// Interval is the canonical form of one upstream trip interval. Field names
// in raw intervals vary with the calculator configuration; NormalizeInterval
// resolves each canonical field through an ordered alias list.
type Interval struct {
	ID             *int64
	Begin          *int64
	End            *int64
	DurationSecs   int64
	DistanceKm     float64
	MaxSpeed       float64
	AvgSpeed       float64
	RoutePolyline  *string
	StartLatitude  *float64
	StartLongitude *float64
	EndLatitude    *float64
	EndLongitude   *float64
	Metadata       Document
}

// Alias lists, in resolution priority order.
var (
	distanceAliases = []string{"distance", "mileage", "odometer"}
	maxSpeedAliases = []string{"max.speed", "max_speed", "speed.max"}
	avgSpeedAliases = []string{"avg.speed", "avg_speed", "average_speed", "speed.avg"}

	startLatAliases = []string{"begin.position.latitude", "position.begin.latitude", "start_latitude"}
	startLonAliases = []string{"begin.position.longitude", "position.begin.longitude", "start_longitude"}
	endLatAliases   = []string{"end.position.latitude", "position.end.latitude", "end_latitude"}
	endLonAliases   = []string{"end.position.longitude", "position.end.longitude", "end_longitude"}
)

// NormalizeInterval maps a raw upstream interval onto the canonical shape.
// It is pure and total: unknown or missing fields degrade to zero values or
// nil, never to an error. Distance is taken as kilometers since the
// platform's mileage counters report km.
func NormalizeInterval(raw Document) Interval {
	iv := Interval{
		DistanceKm: raw.FloatOf(0, distanceAliases...),
		MaxSpeed:   raw.FloatOf(0, maxSpeedAliases...),
		AvgSpeed:   raw.FloatOf(0, avgSpeedAliases...),

		StartLatitude:  raw.FloatPtr(startLatAliases...),
		StartLongitude: raw.FloatPtr(startLonAliases...),
		EndLatitude:    raw.FloatPtr(endLatAliases...),
		EndLongitude:   raw.FloatPtr(endLonAliases...),

		// Full raw record kept verbatim for forward compatibility.
		Metadata: raw,
	}

	if id, ok := raw.Int64("id"); ok {
		iv.ID = &id
	}
	if begin, ok := raw.Int64("begin"); ok {
		iv.Begin = &begin
	}
	if end, ok := raw.Int64("end"); ok {
		iv.End = &end
	}

	switch {
	case iv.Begin != nil && iv.End != nil:
		iv.DurationSecs = *iv.End - *iv.Begin
	default:
		if d, ok := raw.Int64("duration"); ok {
			iv.DurationSecs = d
		}
	}

	// Route stays encoded; decoding happens lazily at display time.
	if route, ok := raw.String("route"); ok && route != "" {
		iv.RoutePolyline = &route
	}

	return iv
}
