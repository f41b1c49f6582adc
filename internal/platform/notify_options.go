package platform

// AppName is reported to notification centres that group by application.
const AppName = "annoview"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file the notification center
	// should display with the notification if supported by the platform.
	IconPath string
	// Urgent asks for a notification that stays until dismissed where the
	// platform supports it.
	Urgent bool
}
