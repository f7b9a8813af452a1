// Package monitor tails several serial devices at once and prints every line
// they produce as one record on a shared console:
//
//	[HH:MM:SS.mmm]    /dev/ttyAMA2: CLAIM slot 2
//
// Each device has its own reader goroutine. Records are colored per device,
// protocol keywords are highlighted and DEBUG: lines are dimmed. A Monitor
// runs until its context is cancelled or every reader has finished.
package monitor
