// Package topology reconstructs pipeline connectivity from endpoint
// coordinates and orders components for emission.
package topology

import "github.com/isotools/pcfgen/internal/models"

// BuildPoints computes the point dictionary for a component. Type rules:
// SUPPORT exposes only its centre; OLET its centre and branch point; TEE its
// two endpoints and branch point; everything else its two endpoints.
// Coordinates are taken verbatim from the row; snapping happens later in the
// graph builder.
func BuildPoints(c *models.ComponentRecord) models.PointDict {
	pd := models.PointDict{}
	switch c.Type {
	case models.TypeSupport:
		if v, ok := c.CentreCoord(); ok {
			pd[models.PointCentre] = v
		}
	case models.TypeOlet:
		if v, ok := c.CentreCoord(); ok {
			pd[models.PointCentre] = v
		}
		if v, ok := c.BranchCoord(); ok {
			pd[models.PointBranch] = v
		}
	case models.TypeTee:
		if v, ok := c.StartCoord(); ok {
			pd[models.PointEnd1] = v
		}
		if v, ok := c.EndCoord(); ok {
			pd[models.PointEnd2] = v
		}
		if v, ok := c.BranchCoord(); ok {
			pd[models.PointBranch] = v
		}
	default:
		if v, ok := c.StartCoord(); ok {
			pd[models.PointEnd1] = v
		}
		if v, ok := c.EndCoord(); ok {
			pd[models.PointEnd2] = v
		}
	}
	return pd
}

// Points returns the component's point dictionary, computing and caching it
// on first use. InvalidatePoints on the record clears the cache.
func Points(c *models.ComponentRecord) models.PointDict {
	if pd, ok := c.CachedPoints(); ok {
		return pd
	}
	pd := BuildPoints(c)
	c.StorePoints(pd)
	return pd
}
