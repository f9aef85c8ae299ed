package monitor

import "log"

// AlertSink is the pluggable delivery end for gate alerts. Slack/email
// sinks live outside this repository; the gate only needs Send.
type AlertSink interface {
	Send(message string) error
}

// LogSink writes alerts to the process log. The default sink.
type LogSink struct{}

func (LogSink) Send(message string) error {
	log.Printf("[ALERT] %s", message)
	return nil
}
