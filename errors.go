/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pplex

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// ContractViolation is the panic value raised when a caller breaks a
// precondition: an unmapped location, an include spelling without
// delimiters, a non-identifier operand of defined. Such input should have
// been rejected by the primary parse.
type ContractViolation struct {
	Op  string
	Msg string
}

func (e ContractViolation) Error() string {
	return e.Op + ": " + e.Msg
}

func violationf(op, format string, args ...any) ContractViolation {
	return ContractViolation{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Recover turns a ContractViolation panic into *errp. Any other panic is
// re-raised. Use it as
//
//	defer pplex.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if cv, ok := r.(ContractViolation); ok {
		*errp = cv
		return
	}
	panic(r)
}

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// SetLogger sets the logger used for debug tracing. A nil logger silences it.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger.Store(l)
}

func tracer() *slog.Logger {
	return logger.Load()
}
