package model

// BloodPressureFlat is the flattened composition the EHR returns for a
// single blood-pressure document, keyed by the FLAT-format paths.
type BloodPressureFlat struct {
	CategoryCode     string  `json:"blood_pressure/category|code"`
	CategoryValue    string  `json:"blood_pressure/category|value"`
	ContextStartTime string  `json:"blood_pressure/context/start_time"`
	SettingValue     string  `json:"blood_pressure/context/setting|value"`
	SystolicUnit     string  `json:"blood_pressure/blood_pressure/any_event:0/systolic|unit"`
	Systolic         float64 `json:"blood_pressure/blood_pressure/any_event:0/systolic|magnitude"`
	Diastolic        float64 `json:"blood_pressure/blood_pressure/any_event:0/diastolic|magnitude"`
	DiastolicUnit    string  `json:"blood_pressure/blood_pressure/any_event:0/diastolic|unit"`
	Time             string  `json:"blood_pressure/blood_pressure/any_event:0/time"`
	Location         string  `json:"blood_pressure/blood_pressure/location_of_measurement|value"`
	Method           string  `json:"blood_pressure/blood_pressure/method|value"`
	ComposerName     string  `json:"blood_pressure/composer|name"`
	UID              string  `json:"blood_pressure/_uid"`
}

// ToMeasurement lifts the flat paths into the structured measurement.
func (f *BloodPressureFlat) ToMeasurement() *BloodPressureMeasurement {
	return &BloodPressureMeasurement{
		Date:               f.Time,
		SystolicMagnitude:  f.Systolic,
		SystolicUnit:       f.SystolicUnit,
		DiastolicMagnitude: f.Diastolic,
		DiastolicUnit:      f.DiastolicUnit,
		Location:           f.Location,
		MeasuredBy:         f.ComposerName,
	}
}
