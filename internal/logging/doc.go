// Package logging provides structured logging for taskban commands.
//
// This package wraps Go's log/slog. Output goes to stderr as key=value text
// by default, or as JSON lines to a file when configured, so that a
// refinement session can be reviewed after the fact.
//
// # Basic Usage
//
//	logger, err := logging.New(logging.Options{Level: "INFO"})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("rank key updated", "task_id", 12, "ord", 1.5)
//
// # Context Propagation
//
// Child loggers carry persistent attributes:
//
//	projectLogger := logger.WithProject("work.infra")
//	projectLogger.Debug("moved", "relation", "child")
//
// # Levels
//
// The CLI maps -v to INFO, -vv to DEBUG and -q to ERROR through
// [LevelFromFlags]; without flags the configured logging.level applies.
//
// # Testing
//
// Use [NopLogger] to discard all output.
package logging
