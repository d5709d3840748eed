/*
Package logger provides leveled logging to a trailhead app by defining the required behavior in [Logger]
and providing an implementation of it with [TrailheadLogger].

# Overview

An implementation of Logger is initialized at a [LogLevel]
and only emits messages at or above that level of importance.
For example, a [TrailheadLogger] initialized with [LogLevelWarn]
only produces messages for [*TrailheadLogger.Warn], [*TrailheadLogger.Error], and [*TrailheadLogger.Fatal].

# TrailheadLogger

Log messages emitted by [TrailheadLogger] are composed of a few parts:
  - timestamp
  - log level
  - call site
  - message
  - log context

Here's an example:

	2024/04/28 15:55:21 [WARN] trailhead/authview/view.go:143 'sign out failed' log_context: {"error":"connection refused"}

The log context is a JSON-encoded [LogContext].
Passwords found in a request's form or JSON body are masked.

# SentryLogger

When the SENTRY_DSN environment variable is set, [New] returns a [SentryLogger]
that writes through a [TrailheadLogger] and also reports errors to Sentry.

# SkipLogger

Packages logging on behalf of their callers use [SkipLogger]
to set how many frames to skip back in order to reach the desired call site.
*/
package logger
