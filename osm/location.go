package osm

import (
	"fmt"
	"math"
	"strconv"
)

// CoordinatePrecision is the number of fixed-point units per degree.
const CoordinatePrecision = 10_000_000

// undefinedCoordinate marks a coordinate that has not been resolved yet.
// It lies outside the valid range of both longitude and latitude.
const undefinedCoordinate = math.MaxInt32

// Location is a longitude/latitude pair stored as fixed-point integers.
//
// The zero value is the valid location (0, 0). Use UndefinedLocation for
// references whose position has not been resolved.
type Location struct {
	X int32 // longitude in 1e-7 degrees
	Y int32 // latitude in 1e-7 degrees
}

// UndefinedLocation returns the sentinel location used for unresolved references.
func UndefinedLocation() Location {
	return Location{X: undefinedCoordinate, Y: undefinedCoordinate}
}

// NewLocation converts floating point degrees into a fixed-point Location.
func NewLocation(lon, lat float64) Location {
	return Location{X: DoubleToFix(lon), Y: DoubleToFix(lat)}
}

// DoubleToFix converts degrees to the fixed-point representation, rounding to nearest.
func DoubleToFix(c float64) int32 {
	return int32(math.Round(c * CoordinatePrecision))
}

// FixToDouble converts a fixed-point coordinate to degrees.
func FixToDouble(c int32) float64 {
	return float64(c) / CoordinatePrecision
}

// IsDefined reports whether the location is not the undefined sentinel.
func (l Location) IsDefined() bool {
	return l.X != undefinedCoordinate || l.Y != undefinedCoordinate
}

// IsValid reports whether the location lies within ±180 longitude and ±90 latitude.
func (l Location) IsValid() bool {
	return l.X >= -180*CoordinatePrecision && l.X <= 180*CoordinatePrecision &&
		l.Y >= -90*CoordinatePrecision && l.Y <= 90*CoordinatePrecision
}

// Lon returns the longitude in degrees.
func (l Location) Lon() float64 {
	return FixToDouble(l.X)
}

// Lat returns the latitude in degrees.
func (l Location) Lat() float64 {
	return FixToDouble(l.Y)
}

// AppendText appends "lon<sep>lat" using the shortest decimal form of each coordinate.
func (l Location) AppendText(dst []byte, sep byte) []byte {
	dst = AppendCoordinate(dst, l.X)
	dst = append(dst, sep)

	return AppendCoordinate(dst, l.Y)
}

// AppendCoordinate appends the shortest decimal form of a fixed-point coordinate,
// e.g. "3.2", "1" or "-0.5".
func AppendCoordinate(dst []byte, c int32) []byte {
	return strconv.AppendFloat(dst, FixToDouble(c), 'f', -1, 64)
}

func (l Location) String() string {
	if !l.IsDefined() {
		return "(undefined,undefined)"
	}

	return fmt.Sprintf("(%s)", l.AppendText(nil, ','))
}
