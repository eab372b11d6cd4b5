package resample

import (
	"fmt"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// RouteStack holds longitude and latitude of several trajectories on a shared
// n-point grid. Unlike Stack, a trajectory with any non-finite position is
// dropped whole, so every remaining route is drawable end to end.
type RouteStack struct {
	IDs     []string
	Lon     [][]float64
	Lat     [][]float64
	Dropped []string
	Points  int
}

// Rows returns the number of routes kept.
func (r RouteStack) Rows() int { return len(r.Lon) }

// ResampleRoutes resamples lon/lat of every trajectory onto n points.
// Longitude is not reduced modulo 360.
func ResampleRoutes(ts []trajectory.Trajectory, n int) (RouteStack, error) {
	if len(ts) == 0 {
		return RouteStack{}, fmt.Errorf("%w: no trajectories to stack", trajectory.ErrInvalidInput)
	}

	rs := RouteStack{Points: n}
	for i, t := range ts {
		s, err := ResampleRaw(t, []trajectory.Quantity{trajectory.Lon, trajectory.Lat}, n)
		if err != nil {
			return RouteStack{}, fmt.Errorf("trajectory %d: %w", i, err)
		}
		lon, lat := s.Values[trajectory.Lon], s.Values[trajectory.Lat]
		if !allFinite(lon) || !allFinite(lat) {
			rs.Dropped = append(rs.Dropped, t.ID)
			continue
		}
		rs.IDs = append(rs.IDs, t.ID)
		rs.Lon = append(rs.Lon, lon)
		rs.Lat = append(rs.Lat, lat)
	}
	if len(rs.Lon) == 0 {
		return RouteStack{}, fmt.Errorf("%w: every route contains non-finite positions", trajectory.ErrInvalidInput)
	}
	return rs, nil
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
