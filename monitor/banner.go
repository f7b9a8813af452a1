package monitor

import "fmt"

// Banner is printed once before any reader starts.
func (f *Formatter) Banner(devices, baud int) string {
	return f.styles.Title.Render("Multi-Serial Monitor Starting...") + "\n" +
		fmt.Sprintf("Monitoring %d device(s) at %d baud", devices, baud) + "\n" +
		"Press Ctrl+C to stop\n"
}

func (f *Formatter) Connected(device string, baud int) string {
	return f.styles.Success.Render(fmt.Sprintf("✓ Connected to %s at %d baud", device, baud))
}

// ConnectFailed renders the failure and the permissions hint as one unit.
func (f *Formatter) ConnectFailed(err *ConnectionError) string {
	return f.styles.Danger.Render(fmt.Sprintf("✗ Failed to connect to %s: %v", err.Device, err.Err)) + "\n" +
		f.styles.Warning.Render("  Make sure the device exists and you have permissions")
}

func (f *Formatter) ReadFailed(err *ReadError) string {
	return f.styles.Danger.Render(fmt.Sprintf("Error reading from %s: %v", err.Device, err.Err))
}

func (f *Formatter) Stopping() string {
	return "\n" + f.styles.Warning.Render("Stopping monitor...")
}

func (f *Formatter) Stopped() string {
	return f.styles.Success.Render("Monitor stopped.")
}

// Failure renders a fatal startup error.
func (f *Formatter) Failure(message string) string {
	return f.styles.Danger.Render("Error: " + message)
}
