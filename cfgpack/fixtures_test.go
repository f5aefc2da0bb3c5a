// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package cfgpack_test

import (
	"testing"

	"github.com/Arsievert/cfgpack-sub001/cfgpack"
	"github.com/Arsievert/cfgpack-sub001/internal/cfgpacktest"
)

// TestSharedFixtureSmoke exercises the shared cfgpacktest fixture
// used across package tests, as a separate external test so it can
// import both cfgpack and cfgpacktest without a cycle.
func TestSharedFixtureSmoke(t *testing.T) {
	ctx, _, err := cfgpacktest.NewContext(cfgpacktest.SmokeSchema())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if err := ctx.SetU8(1, 9); err != nil {
		t.Fatalf("SetU8: %v", err)
	}
	if err := ctx.SetStr(2, []byte("foo")); err != nil {
		t.Fatalf("SetStr: %v", err)
	}

	var buf cfgpack.Buffer
	scratch := make([]byte, 64)
	buf.Reset(scratch)
	if _, err := ctx.Pageout(&buf); err != nil {
		t.Fatalf("Pageout: %v", err)
	}

	ctx2, _, err := cfgpacktest.NewContext(cfgpacktest.SmokeSchema())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if err := ctx2.Pagein(buf.Bytes()); err != nil {
		t.Fatalf("Pagein: %v", err)
	}
	got, err := ctx2.GetU8(1)
	if err != nil || got != 9 {
		t.Fatalf("GetU8(1) = %d, %v; want 9, nil", got, err)
	}
}
