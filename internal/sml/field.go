// Package sml accumulates the samples of a Moveslink2 export and converts
// them to track points.
package sml

// Field identifies an accumulated value of a sample.
type Field uint8

const (
	FieldNone Field = iota
	FieldLocalTime
	FieldLatitude
	FieldLongitude
	FieldVerticalSpeed
	FieldCadence
	FieldHeartRate
	FieldTemperature
	FieldSeaLevelPressure
	FieldAltitude
	FieldDistance
	FieldSpeed
	FieldElapsedTime
	FieldSampleType
	FieldUTC

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldNone:             "none",
	FieldLocalTime:        "local time",
	FieldLatitude:         "latitude",
	FieldLongitude:        "longitude",
	FieldVerticalSpeed:    "vertical speed",
	FieldCadence:          "cadence",
	FieldHeartRate:        "hr",
	FieldTemperature:      "temperature",
	FieldSeaLevelPressure: "sea level pressure",
	FieldAltitude:         "altitude",
	FieldDistance:         "distance",
	FieldSpeed:            "speed",
	FieldElapsedTime:      "elapsed time",
	FieldSampleType:       "sample type",
	FieldUTC:              "utc",
}

func (f Field) String() string {
	if f >= fieldCount {
		return "Field(invalid)"
	}
	return fieldNames[f]
}

// Route returns the field fed by the character data of the element
// with the given local name, or FieldNone for unrecognized elements.
// GPSAltitude and Altitude both feed FieldAltitude.
func Route(local []byte) Field {
	switch string(local) {
	case "DateTime":
		return FieldLocalTime
	case "GPSAltitude", "Altitude":
		return FieldAltitude
	case "Latitude":
		return FieldLatitude
	case "Longitude":
		return FieldLongitude
	case "VerticalSpeed":
		return FieldVerticalSpeed
	case "Cadence":
		return FieldCadence
	case "HR":
		return FieldHeartRate
	case "Temperature":
		return FieldTemperature
	case "SeaLevelPressure":
		return FieldSeaLevelPressure
	case "Distance":
		return FieldDistance
	case "Speed":
		return FieldSpeed
	case "Time":
		return FieldElapsedTime
	case "SampleType":
		return FieldSampleType
	case "UTC":
		return FieldUTC
	}
	return FieldNone
}
