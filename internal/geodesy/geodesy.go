// Package geodesy implements the geodesic distance algorithms used by the
// delivery engine: an equirectangular approximation, the haversine formula
// and Vincenty's inverse formulae on the WGS-84 ellipsoid, plus a selector
// that picks the cheapest algorithm accurate enough for the distance at
// hand. All functions are pure and never touch I/O.
//
// Every distance is returned in kilometers rounded to two decimal places.
// The rounding is a contract: cached and compared values downstream assume
// two-decimal precision.
package geodesy

import (
	"errors"
	"math"

	"github.com/cardapiolabs/rota/internal/models"
)

// Earth radii in kilometers. The WGS-84 constants drive Vincenty; the mean
// radius drives the spherical formulas.
const (
	meanEarthRadiusKm = 6371.0
	wgs84MajorAxisKm  = 6378.137
	wgs84MinorAxisKm  = 6356.752314245
	wgs84Flattening   = 1 / 298.257223563
)

// Selector thresholds: below haversineThresholdKm the approximation probe is
// accurate enough to return directly, below vincentyThresholdKm the
// spherical error is still negligible for delivery purposes.
const (
	haversineThresholdKm = 10.0
	vincentyThresholdKm  = 100.0
)

const (
	vincentyTolerance     = 1e-12
	vincentyMaxIterations = 100
)

// ErrNonConvergence is returned when Vincenty's fixed-point iteration fails
// to converge within the iteration cap. Callers must treat the pair as
// unavailable for Vincenty and fall back to haversine; the error never
// stands in for a silently wrong value.
var ErrNonConvergence = errors.New("vincenty iteration did not converge")

// Round2 rounds a distance to the two-decimal contract.
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Approximate computes the equirectangular approximation: the longitude
// delta projected by the cosine of the mean latitude, combined with the
// latitude delta via Pythagoras. Cheapest and least accurate; error grows
// with distance and absolute latitude.
func Approximate(p1, p2 models.Coordinates) float64 {
	x := toRad(p2.Longitude-p1.Longitude) * math.Cos(toRad((p1.Latitude+p2.Latitude)/2))
	y := toRad(p2.Latitude - p1.Latitude)

	return Round2(math.Sqrt(x*x+y*y) * meanEarthRadiusKm)
}

// Haversine computes the spherical great-circle distance. Accurate for
// short and medium distances; ignores the ellipsoidal flattening.
func Haversine(p1, p2 models.Coordinates) float64 {
	dLat := toRad(p2.Latitude - p1.Latitude)
	dLon := toRad(p2.Longitude - p1.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p1.Latitude))*math.Cos(toRad(p2.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return Round2(meanEarthRadiusKm * c)
}

// Vincenty computes the ellipsoidal distance on WGS-84 via the inverse
// formulae, iterating on the longitude difference lambda until it moves by
// less than vincentyTolerance. Coincident points short-circuit to zero
// (sinSigma would be zero and the azimuth division undefined). Returns
// ErrNonConvergence when the iteration cap is exhausted, which happens for
// some nearly antipodal pairs.
func Vincenty(p1, p2 models.Coordinates) (float64, error) {
	flat := wgs84Flattening
	big := toRad(p2.Longitude - p1.Longitude)

	u1 := math.Atan((1 - flat) * math.Tan(toRad(p1.Latitude)))
	u2 := math.Atan((1 - flat) * math.Tan(toRad(p2.Latitude)))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := big
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	converged := false

	for range vincentyMaxIterations {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(
			(cosU2*sinLambda)*(cosU2*sinLambda) +
				(cosU1*sinU2-sinU1*cosU2*cosLambda)*(cosU1*sinU2-sinU1*cosU2*cosLambda),
		)
		if sinSigma == 0 {
			return 0, nil // coincident points
		}

		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha

		if cosSqAlpha == 0 {
			cos2SigmaM = 0 // equatorial line
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}

		correction := flat / 16 * cosSqAlpha * (4 + flat*(4-3*cosSqAlpha))
		prev := lambda
		lambda = big + (1-correction)*flat*sinAlpha*
			(sigma+correction*sinSigma*(cos2SigmaM+correction*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < vincentyTolerance {
			converged = true
			break
		}
	}

	if !converged {
		return 0, ErrNonConvergence
	}

	uSq := cosSqAlpha * (wgs84MajorAxisKm*wgs84MajorAxisKm - wgs84MinorAxisKm*wgs84MinorAxisKm) /
		(wgs84MinorAxisKm * wgs84MinorAxisKm)
	coefA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	coefB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	deltaSigma := coefB * sinSigma * (cos2SigmaM + coefB/4*
		(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			coefB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return Round2(wgs84MinorAxisKm * coefA * (sigma - deltaSigma)), nil
}

// Optimal picks the cheapest algorithm accurate enough for the pair. The
// approximation doubles as a probe: short range keeps the probe value,
// medium range recomputes with haversine, long range pays for Vincenty
// (falling back to haversine if the iteration does not converge).
func Optimal(p1, p2 models.Coordinates) float64 {
	probe := Approximate(p1, p2)

	switch {
	case probe < haversineThresholdKm:
		return probe
	case probe < vincentyThresholdKm:
		return Haversine(p1, p2)
	}

	km, err := Vincenty(p1, p2)
	if err != nil {
		return Haversine(p1, p2)
	}

	return km
}

// WithinRadius reports whether point lies within radiusKm of center by
// great-circle distance. The boundary is inclusive.
func WithinRadius(center, point models.Coordinates, radiusKm float64) bool {
	return Haversine(center, point) <= radiusKm
}
