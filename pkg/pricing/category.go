package pricing

// Pricing categories a promo group can discount independently.
const (
	CategoryPeriod  = "period"
	CategoryServers = "servers"
	CategoryDevices = "devices"
	CategoryTraffic = "traffic"
)
