// Package proj converts New Zealand Transverse Mercator (NZTM2000) grid
// coordinates to WGS84 longitude/latitude.
//
// Formulae from LINZ's transverse-mercator transformation notes; ellipsoid
// parameters are those of NZGD2000 (GRS80).
package proj

import "math"

const (
	a  = 6378137.0           // semi-major axis
	f  = 1 / 298.257222101   // ellipsoidal flattening
	λ0 = 173.0               // origin longitude
	e0 = 1600000.0           // false easting
	n0 = 10000000.0          // false northing
	k0 = 0.9996              // central meridian scale factor
)

var (
	b  = a * (1 - f)
	e2 = 2*f - f*f // first eccentricity squared
)

// NZTMToWGS converts an easting/northing pair to (lng, lat) in degrees
func NZTMToWGS(easting, northing float64) (lng, lat float64) {
	// origin latitude is the equator, so the meridian arc to it is zero
	nPrime := northing - n0
	mPrime := nPrime / k0
	n := (a - b) / (a + b)
	n2, n3, n4 := n*n, n*n*n, n*n*n*n

	g := a * (1 - n) * (1 - n2) * (1 + 9*n2/4 + 225*n4/64) * math.Pi / 180.0
	sigma := mPrime * math.Pi / (180 * g)

	phiPrime := sigma +
		(3*n/2-27*n3/32)*math.Sin(2*sigma) +
		(21*n2/16-55*n4/32)*math.Sin(4*sigma) +
		(151*n3/96)*math.Sin(6*sigma) +
		(1097*n4/512)*math.Sin(8*sigma)

	sinPhi := math.Sin(phiPrime)
	rho := a * (1 - e2) / math.Pow((1-e2*sinPhi)*(1-e2*sinPhi), 1.5)
	upsilon := a / math.Sqrt(1-e2*sinPhi*sinPhi)
	psi := upsilon / rho
	tPhi := math.Tan(phiPrime)
	ePrime := easting - e0
	chi := ePrime / (k0 * upsilon)

	t2, t4, t6 := tPhi*tPhi, tPhi*tPhi*tPhi*tPhi, tPhi*tPhi*tPhi*tPhi*tPhi*tPhi
	psi2, psi3, psi4 := psi*psi, psi*psi*psi, psi*psi*psi*psi
	chi2 := chi * chi

	latT1 := tPhi * ePrime * chi / (k0 * rho * 2)
	latT2 := latT1 * chi2 / 12 * (-4*psi2 + 9*psi*(1-t2) + 12*t2)
	latT3 := tPhi * ePrime * math.Pow(chi, 5) / (k0 * rho * 720) *
		(8*psi4*(11-24*t2) - 12*psi3*(21-71*t2) + 15*psi2*(15-98*t2+15*t4) +
			180*psi*(5*t2-3*t4) + 360*t4)
	latT4 := tPhi * ePrime * math.Pow(chi, 7) / (k0 * rho * 40320) *
		(1385 + 3633*t2 + 4095*t4 + 1575*t6)

	sec := 1 / math.Cos(phiPrime)
	lngT1 := chi * sec
	lngT2 := math.Pow(chi, 3) * sec / 6 * (psi + 2*t2)
	lngT3 := math.Pow(chi, 5) * sec / 120 *
		(-4*psi3*(1-6*t2) + psi2*(9-68*t2) + 72*psi*t2 + 24*t4)
	lngT4 := math.Pow(chi, 7) * sec / 5040 *
		(61 + 662*t2 + 1320*t4 + 720*t6)

	lat = (phiPrime - latT1 + latT2 - latT3 + latT4) * 180 / math.Pi
	lng = λ0 + 180/math.Pi*(lngT1-lngT2+lngT3-lngT4)

	return lng, lat
}
