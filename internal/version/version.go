package version

const (
	AppName        = "wabot"
	AppVersion     = "0.1.0"
	AppDescription = "WhatsApp utility bot focused on essential features"
)
