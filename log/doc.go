// Package log provides the leveled logging interface used across ontollm.
//
// Every component accepts a Logger and falls back to the package-level
// default returned by GetDefaultLogger. Two implementations ship with the
// package: DefaultLogger, built on the standard library logger, and
// GologLogger, a thin wrapper over github.com/kataras/golog that the
// binaries install at startup via NewLogger.
//
//	logger := log.NewLogger(log.ParseLevel(os.Getenv("LOG_LEVEL")))
//	log.SetDefaultLogger(logger)
//	logger.Info("PromptBudget model=%s", model)
//
// NoOpLogger discards everything and is convenient in tests.
package log
