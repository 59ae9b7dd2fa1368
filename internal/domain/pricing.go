package domain

// TotalPriceMinor is nights times the nightly rate, in currency minor units.
func TotalPriceMinor(pricePerNightMinor int64, stay StayInterval) int64 {
	return int64(stay.NightCount()) * pricePerNightMinor
}
