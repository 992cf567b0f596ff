/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package errs defines the closed error taxonomy surfaced by the public
// operations of the snapshot assembly engine.
package errs

import "fmt"

// Kind is a closed taxonomy of failure modes. ProtocolStateLost is
// intentionally unexported from the taxonomy exposed to callers: it is an
// internal recovery event, logged and never returned (see snapshot.State).
type Kind int

const (
	InvalidHandle Kind = iota
	InvalidConnection
	AlreadyExists
	InvalidSubscription
	InvalidListener
	InsufficientMemory
)

func (k Kind) String() string {
	switch k {
	case InvalidHandle:
		return "InvalidHandle"
	case InvalidConnection:
		return "InvalidConnection"
	case AlreadyExists:
		return "AlreadyExists"
	case InvalidSubscription:
		return "InvalidSubscription"
	case InvalidListener:
		return "InvalidListener"
	case InsufficientMemory:
		return "InsufficientMemory"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type every public operation returns on
// failure. It carries a Kind so callers can switch on failure class without
// parsing strings.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// New constructs an *Error for the given operation and kind.
func New(op string, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Is reports whether err is an *Error of the given kind, so callers can use
// errors.Is(err, errs.AlreadyExists) style checks via a sentinel wrapper.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
