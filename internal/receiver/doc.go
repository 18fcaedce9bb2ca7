// Package receiver contains the handlers that fired alarms are delivered to.
//
// Log writes deliveries to the structured log, Telegram and LINE push the
// title and text to a chat, and Fanout hands one delivery to several
// receivers.
package receiver
