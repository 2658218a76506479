// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package jobs executes games on the printer.
//
// A Runner owns the only path to the motion controller for whole games: jobs
// are compiled when submitted, persisted, and then streamed chunk by chunk by
// a single worker. The Bridge offers the manual operations (home, goto,
// magnet, single piece move, emergency stop) and refuses them while a job is
// moving the head.
package jobs
