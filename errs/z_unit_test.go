// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errs

import (
	"errors"
	"io"
	"testing"
)

func TestWrapKeepsLevel(t *testing.T) {
	base := NewWarn("bad input")
	w := Wrap(base, "outer")
	if w.ErrLv != Warn {
		t.Fatalf("expected warn level, got %s", w.ErrLv)
	}
	if !errors.Is(w, base) {
		t.Fatalf("expected wrapped error to unwrap to base")
	}

	std := Wrap(io.EOF, "read failed")
	if std.ErrLv != Fatal {
		t.Fatalf("foreign errors should wrap as fatal, got %s", std.ErrLv)
	}
}

func TestInvalidf(t *testing.T) {
	err := Invalidf("rank out of range: %d", 13)
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection in chain")
	}
	if errors.Is(err, ErrConfig) {
		t.Fatalf("selection errors must not match ErrConfig")
	}
	e, ok := AsErr(Wrap(err, "build"))
	if !ok || e.ErrLv != Warn {
		t.Fatalf("expected warn after wrap, got %+v", e)
	}
}

func TestConfigf(t *testing.T) {
	err := Configf("missing builder: %s", "dice")
	if !errors.Is(err, ErrConfig) || err.ErrLv != Fatal {
		t.Fatalf("unexpected config error: %v", err)
	}
}

func TestNotFoundfAndWith(t *testing.T) {
	err := NotFoundf("quote %s not found", "7d0f").With("store=badger")
	if !errors.Is(err, ErrNotFound) || err.ErrLv != Warn {
		t.Fatalf("unexpected: %v", err)
	}
	want := "errlv=warn quote 7d0f not found | extra: store=badger (cause: errlv=warn not found)"
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
	if _, ok := AsErr(io.EOF); ok {
		t.Fatal("io.EOF is not *E")
	}
}
