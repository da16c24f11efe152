/*
Package log configures the process-wide zerolog logger used by burrow.

Call Init once at startup; packages then derive child loggers with
WithComponent so every line carries its origin:

	log.Init(log.Config{Level: log.ParseLevel(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	logger := log.WithComponent("manager")
	logger.Info().Str("node_id", id).Msg("Node joined")

Console output is the default; JSONOutput switches to one JSON object per line
for log shippers. Until Init is called, Logger is the zero zerolog.Logger and
discards everything, which keeps tests quiet.

Load handles must never be logged. types.LoadHandle prints as "<sealed>" if it
ends up in a message by mistake.
*/
package log
