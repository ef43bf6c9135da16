// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package exc

import "sync"

// Reporter is used to accumulate and report diagnostics during a parse. This
// is modeled after the protocompile interface of the same name that is used
// to accumulate protobuf compilation errors. The parser reports a diagnostic
// and keeps going rather than failing outright; the final set is shown to the
// user and its maximum severity decides whether the parse counts as failed.
type Reporter interface {
	// Report adds the given record to the set. The return value is the
	// record itself when it is an error-severity diagnostic, nil otherwise.
	Report(Exception) Exception
	// Reported returns the set of accumulated exceptions.
	Reported() []Exception
	// MaxSeverity returns the highest severity reported so far. It returns
	// SeverityInfo when nothing has been reported.
	MaxSeverity() Severity
}

// NewReporter returns a concurrent-safe implementation of Reporter so that
// independent files can be parsed in parallel against one accumulator.
func NewReporter() Reporter {
	return &reporterLock{
		Reporter: &reporter{},
		lock:     &sync.Mutex{},
	}
}

type reporter struct {
	reported []Exception
	max      Severity
}

func (r *reporter) Report(e Exception) Exception {
	r.reported = append(r.reported, e)
	if e.Severity() > r.max {
		r.max = e.Severity()
	}
	if e.Severity() == SeverityError {
		return e
	}
	return nil
}

func (r *reporter) Reported() []Exception {
	return r.reported
}

func (r *reporter) MaxSeverity() Severity {
	return r.max
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Reported()
}

func (r *reporterLock) MaxSeverity() Severity {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.MaxSeverity()
}
