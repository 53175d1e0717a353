package geo

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// LaunchCell returns the H3 cell index covering the launch site at the
// given resolution (0-15), as a hex string.
func LaunchCell(lat, lon float64, resolution int) (string, error) {
	if resolution < 0 || resolution > 15 {
		return "", fmt.Errorf("invalid h3 resolution %d", resolution)
	}
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), resolution)
	if err != nil {
		return "", fmt.Errorf("failed to index launch site: %w", err)
	}
	return cell.String(), nil
}
