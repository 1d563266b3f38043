// Package notifier provides announcement channels for newly extracted races.
//
// The notifier package formats a short announcement per race document (name, date,
// distance, location and the winner of each gender section) and posts it to Twitter
// or a Telegram chat, or prints it in dry-run mode.
package notifier
