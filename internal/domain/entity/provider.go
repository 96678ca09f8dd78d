package entity

// ProviderFormat classifies which known confirmation-email layout an email
// uses. It is a pure tag; detection happens in the parser package.
type ProviderFormat string

const (
	FormatVietJetAir   ProviderFormat = "VIETJET_AIR"
	FormatTripCom      ProviderFormat = "TRIP_COM"
	FormatBookingCom   ProviderFormat = "BOOKING_COM"
	FormatUnrecognized ProviderFormat = "UNRECOGNIZED"
)

func (f ProviderFormat) String() string {
	return string(f)
}
